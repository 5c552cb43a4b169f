package enums

import "fmt"

// VehicleClass is the weight/capacity class of a dispatch vehicle.
type VehicleClass string

const (
	VehicleClassHalfTon      VehicleClass = "0.5t"
	VehicleClassOneTon       VehicleClass = "1t"
	VehicleClassOneAndHalf   VehicleClass = "1.5t"
	VehicleClassTwoAndHalf   VehicleClass = "2.5t"
	VehicleClassFiveTon      VehicleClass = "5t"
	VehicleClassEightTon     VehicleClass = "8t"
	VehicleClassContainer    VehicleClass = "container"
	VehicleClassCustomerPick VehicleClass = "customer_pickup"
)

var validVehicleClasses = []VehicleClass{
	VehicleClassHalfTon,
	VehicleClassOneTon,
	VehicleClassOneAndHalf,
	VehicleClassTwoAndHalf,
	VehicleClassFiveTon,
	VehicleClassEightTon,
	VehicleClassContainer,
	VehicleClassCustomerPick,
}

// String implements fmt.Stringer.
func (v VehicleClass) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VehicleClass.
func (v VehicleClass) IsValid() bool {
	for _, candidate := range validVehicleClasses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVehicleClass converts raw input into a VehicleClass.
func ParseVehicleClass(value string) (VehicleClass, error) {
	for _, candidate := range validVehicleClasses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle class %q", value)
}
