package enums

import "fmt"

// StaffRole describes what a user may do in the dispatch workflow.
type StaffRole string

const (
	StaffRoleAdmin      StaffRole = "admin"
	StaffRoleDispatcher StaffRole = "dispatcher"
	StaffRoleLeader     StaffRole = "leader"
	StaffRoleWarehouse  StaffRole = "warehouse"
)

var validStaffRoles = []StaffRole{
	StaffRoleAdmin,
	StaffRoleDispatcher,
	StaffRoleLeader,
	StaffRoleWarehouse,
}

// String implements fmt.Stringer.
func (r StaffRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known StaffRole.
func (r StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseStaffRole converts raw input into a StaffRole.
func ParseStaffRole(value string) (StaffRole, error) {
	for _, candidate := range validStaffRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff role %q", value)
}
