package enums

import "fmt"

// Warehouse identifies one of the producer's dispatch warehouses.
type Warehouse string

const (
	WarehouseK01 Warehouse = "K01"
	WarehouseK02 Warehouse = "K02"
	WarehouseK03 Warehouse = "K03"
	WarehouseK04 Warehouse = "K04"
)

var validWarehouses = []Warehouse{
	WarehouseK01,
	WarehouseK02,
	WarehouseK03,
	WarehouseK04,
}

// String implements fmt.Stringer.
func (w Warehouse) String() string {
	return string(w)
}

// IsValid reports whether the value is a known Warehouse.
func (w Warehouse) IsValid() bool {
	for _, candidate := range validWarehouses {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWarehouse converts raw input into a Warehouse.
func ParseWarehouse(value string) (Warehouse, error) {
	for _, candidate := range validWarehouses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid warehouse %q", value)
}

// Warehouses returns the known warehouse codes in stable order.
func Warehouses() []Warehouse {
	out := make([]Warehouse, len(validWarehouses))
	copy(out, validWarehouses)
	return out
}
