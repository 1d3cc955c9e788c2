package enums

import "fmt"

// AssignmentMethod records how an order got its dispatcher.
type AssignmentMethod string

const (
	AssignmentMethodManual AssignmentMethod = "manual"
	AssignmentMethodAuto   AssignmentMethod = "auto"
)

var validAssignmentMethods = []AssignmentMethod{
	AssignmentMethodManual,
	AssignmentMethodAuto,
}

// IsValid checks whether the given method matches the canonical enum.
func (m AssignmentMethod) IsValid() bool {
	for _, candidate := range validAssignmentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseAssignmentMethod converts raw strings into AssignmentMethod.
func ParseAssignmentMethod(value string) (AssignmentMethod, error) {
	for _, candidate := range validAssignmentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment method %q", value)
}
