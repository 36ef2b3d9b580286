package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestPolicyValidate(t *testing.T) {
	valid := Policy{
		ID:     uuid.New(),
		Number: "POL-1001",
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error for valid policy, got %v", err)
	}

	// All references are optional; a bare number is enough.
	bare := Policy{ID: uuid.New(), Number: "POL-1002"}
	if err := bare.Validate(); err != nil {
		t.Errorf("Expected no error for policy without references, got %v", err)
	}

	noNumber := valid
	noNumber.Number = ""
	if err := noNumber.Validate(); err != ErrEmptyPolicyNumber {
		t.Errorf("Expected error %v, got %v", ErrEmptyPolicyNumber, err)
	}
}
