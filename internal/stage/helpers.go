package stage

import (
	"titledoctor/internal/bus"
	"titledoctor/internal/services"
)

// Payload asserts the trigger event to the concrete type a stage expects.
// On mismatch it returns a services.ErrValidation suitable for Execute methods.
func Payload[T bus.Event](name string, event bus.Event) (T, error) {
	payload, ok := event.(T)
	if !ok {
		var zero T
		return zero, services.Wrap(
			services.ErrValidation, name, "decode trigger event",
			"Unexpected event payload for stage", nil)
	}
	return payload, nil
}
