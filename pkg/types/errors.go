package types

import (
	"errors"
	"fmt"
)

var (
	ErrClosed      = errors.New("filter controller is closed")
	ErrUnknownView = errors.New("unknown view")
)

// ValidationError is returned when a filter update or an item is outside its
// domain. Setters that return it keep the previous value.
type ValidationError struct {
	Field  string `json:"field"`
	Value  any    `json:"value,omitempty"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// InvalidRangeError signals a price range with min above max reaching the
// engine. The controller never builds one.
type InvalidRangeError struct {
	Min float64
	Max float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid price range [%g, %g]: min is greater than max", e.Min, e.Max)
}
