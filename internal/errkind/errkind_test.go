package errkind

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew_messageAndUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := New(Remote, "The generation service could not be reached.", cause)
	if got := err.Error(); got != "The generation service could not be reached." {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	err := New(Precondition, "no token", nil)
	kind, ok := KindOf(err)
	if !ok || kind != Precondition {
		t.Errorf("KindOf = %v, %v", kind, ok)
	}

	// Survives further wrapping.
	wrapped := fmt.Errorf("load config: %w", New(Service, "empty reply", nil))
	kind, ok = KindOf(wrapped)
	if !ok || kind != Service {
		t.Errorf("KindOf(wrapped) = %v, %v", kind, ok)
	}

	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf(plain) should report false")
	}
}
