package services

import (
	"fmt"
	"strings"
)

// ModelNotFoundError is returned when the requested model is not known to
// the controller.
type ModelNotFoundError struct {
	Name      string
	Available []string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %q does not exist. Available models are [%s]",
		e.Name, strings.Join(e.Available, ", "))
}

// ApplicationNotFoundError is returned when one or more application
// selectors do not exist in the model.
type ApplicationNotFoundError struct {
	Missing   []string
	Available []string
}

func (e *ApplicationNotFoundError) Error() string {
	return fmt.Sprintf("applications [%s] do not exist. Available applications are [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}

// UnitNotFoundError is returned when one or more unit selectors do not
// exist in the model.
type UnitNotFoundError struct {
	Missing   []string
	Available []string
}

func (e *UnitNotFoundError) Error() string {
	return fmt.Sprintf("units [%s] do not exist. Available units are [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}

// MachineNotFoundError is returned when one or more machine selectors do
// not exist in the model.
type MachineNotFoundError struct {
	Missing   []string
	Available []string
}

func (e *MachineNotFoundError) Error() string {
	return fmt.Sprintf("machines [%s] do not exist. Available machines are [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}

// CollectionError is returned when the sos collect process exits non-zero.
// Output carries the captured stderr so the failure is diagnosable from the
// action response.
type CollectionError struct {
	ExitCode int
	Output   string
	Err      error
}

func (e *CollectionError) Error() string {
	msg := fmt.Sprintf("sos collection failed (exit code %d)", e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg = fmt.Sprintf("%s: %s", msg, out)
	}
	return msg
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}
