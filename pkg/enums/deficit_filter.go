package enums

import "fmt"

// DeficitFilter narrows the surplus/deficit listing.
type DeficitFilter string

const (
	// DeficitFilterDeficit keeps only items whose confirmed and requested
	// quantities differ.
	DeficitFilterDeficit DeficitFilter = "deficit"
	DeficitFilterAll     DeficitFilter = "all"
)

var validDeficitFilters = []DeficitFilter{
	DeficitFilterDeficit,
	DeficitFilterAll,
}

// String implements fmt.Stringer.
func (d DeficitFilter) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeficitFilter.
func (d DeficitFilter) IsValid() bool {
	for _, candidate := range validDeficitFilters {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeficitFilter converts raw input into a DeficitFilter.
func ParseDeficitFilter(value string) (DeficitFilter, error) {
	for _, candidate := range validDeficitFilters {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deficit filter %q", value)
}
