package registry

import "fmt"

// Input extracts a required, typed input from a builder's resolved inputs.
func Input[T any](inputs map[string]any, slot string) (T, error) {
	var zero T
	value, ok := inputs[slot]
	if !ok {
		return zero, fmt.Errorf("missing input '%s'", slot)
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("input '%s' has type %T, expected %T", slot, value, zero)
	}
	return typed, nil
}

// OptionalInput extracts a typed input if the slot is wired. A wired slot
// with a mismatched type is still an error.
func OptionalInput[T any](inputs map[string]any, slot string) (T, bool, error) {
	var zero T
	value, ok := inputs[slot]
	if !ok {
		return zero, false, nil
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false, fmt.Errorf("input '%s' has type %T, expected %T", slot, value, zero)
	}
	return typed, true, nil
}
