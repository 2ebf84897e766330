package mcierr

import (
	"errors"
	"testing"
)

func TestConfigErrorUnwrapsToSentinel(t *testing.T) {
	err := NewConfigError("SetDomain", "dimension mismatch")
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("ConfigError does not unwrap to ErrInvalidConfiguration")
	}
	if errors.Is(err, ErrInvalidState) {
		t.Fatal("ConfigError should not unwrap to ErrInvalidState")
	}
}

func TestStateErrorUnwrapsToSentinel(t *testing.T) {
	err := NewStateError("Estimate", "no accumulated samples")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatal("StateError does not unwrap to ErrInvalidState")
	}
}

func TestErrorMessageIncludesOp(t *testing.T) {
	err := NewConfigError("AddObservable", "nskip must be >= 1")
	if err.Error() == "" {
		t.Fatal("empty error message")
	}
}
