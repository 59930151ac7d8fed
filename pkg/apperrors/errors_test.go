package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrappedKindsAreDistinguishable(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := fmt.Errorf("insert issue 7: %w: %w", ErrPersistence, cause)

	if !errors.Is(err, ErrPersistence) {
		t.Error("expected ErrPersistence")
	}
	if !errors.Is(err, cause) {
		t.Error("expected underlying cause to be preserved")
	}
	for _, other := range []error{ErrConnection, ErrEmbedding, ErrQuery, ErrInvalidArgument, ErrNotFound} {
		if errors.Is(err, other) {
			t.Errorf("did not expect %v", other)
		}
	}
}
