package dataset

import "fmt"

// ValidationError aborts a run: a validator returned false for Table.
type ValidationError struct {
	Table   string
	Check   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s (%s): %s", e.Table, e.Check, e.Message)
}

// GenerationIntegrityError aborts a run: a stage produced a different number of
// values than the rows it was asked to fill.
type GenerationIntegrityError struct {
	Table    string
	Column   string
	Expected int
	Got      int
}

func (e *GenerationIntegrityError) Error() string {
	return fmt.Sprintf("generation integrity: %s.%s expected %d values, got %d", e.Table, e.Column, e.Expected, e.Got)
}

// ConfigurationError marks a schema rule that cannot be applied. The column is
// left as it was and the run continues.
type ConfigurationError struct {
	Table  string
	Column string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s.%s: %s", e.Table, e.Column, e.Reason)
}

// Require converts a failed check into a *ValidationError.
func Require(ok bool, table, check, message string) error {
	if ok {
		return nil
	}
	return &ValidationError{Table: table, Check: check, Message: message}
}
