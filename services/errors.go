// ABOUTME: Typed errors for the sizing core
// ABOUTME: NotSchedulable, InvalidInput, and Internal all abort a sizing run

package services

import "fmt"

// NotSchedulableError reports that no MachineSet can host one of a
// workload's co-placement bundles. MinCPU/MinMemory describe the smallest
// node shape that would fit the failing bundle.
type NotSchedulableError struct {
	Workload   string
	MachineSet string
	Constraint string // "cpu", "memory", "disk" or a comma-joined set
	MinCPU     int
	MinMemory  int
}

func (e *NotSchedulableError) Error() string {
	return fmt.Sprintf(
		"workload %q cannot be scheduled: %s capacity of machine set %q is insufficient; smallest viable node is %d cpu cores and %d GB memory",
		e.Workload, e.Constraint, e.MachineSet, e.MinCPU, e.MinMemory)
}

// InvalidInputError reports malformed sizing input.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

func invalidInputf(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// InternalError reports a violated invariant inside the sizing core.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return e.Message
}

func internalf(format string, args ...interface{}) error {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}
