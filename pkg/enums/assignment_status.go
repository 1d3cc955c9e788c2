package enums

import "fmt"

// AssignmentStatus tracks where an order sits in the claim/auto-assign state machine.
type AssignmentStatus string

const (
	AssignmentStatusAvailable    AssignmentStatus = "available"
	AssignmentStatusClaimed      AssignmentStatus = "claimed"
	AssignmentStatusAutoAssigned AssignmentStatus = "auto_assigned"
)

var validAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusAvailable,
	AssignmentStatusClaimed,
	AssignmentStatusAutoAssigned,
}

// IsValid checks whether the given status matches the canonical enum.
func (s AssignmentStatus) IsValid() bool {
	for _, candidate := range validAssignmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether the status can no longer change from this subsystem's perspective.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentStatusClaimed || s == AssignmentStatusAutoAssigned
}

// ParseAssignmentStatus converts raw strings into AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	for _, candidate := range validAssignmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment status %q", value)
}
