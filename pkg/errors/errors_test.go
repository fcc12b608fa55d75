package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
	if err.Kind != KindInternal {
		t.Fatalf("expected internal kind, got %s", err.Kind)
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New(KindValidation, "TEST", "test", 400)
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}

	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}

	if with.Internal == nil {
		t.Fatal("expected internal error to be set")
	}

	if !stdErrors.Is(with, base) {
		t.Fatal("expected copy to match the sentinel via errors.Is")
	}
}

func TestFromError(t *testing.T) {
	appErr := ErrNotFound
	if out := FromError(appErr); out != appErr {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	raw := stdErrors.New("raw")
	out := FromError(raw)
	if out.Code != ErrInternalServer.Code {
		t.Fatalf("expected internal server code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}

	wrapped := fmt.Errorf("handler: %w", ErrInvalidCredentials)
	if out := FromError(wrapped); out != ErrInvalidCredentials {
		t.Fatal("expected wrapped AppError to be unwrapped")
	}
}

func TestNewValidation(t *testing.T) {
	err := NewValidation("invalid payload")
	if err.Code != ErrBadRequest.Code {
		t.Fatalf("expected %s, got %s", ErrBadRequest.Code, err.Code)
	}
	if err.Message != "invalid payload" {
		t.Fatalf("unexpected message: %s", err.Message)
	}
	if err.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", err.StatusCode)
	}
}

func TestNotFoundUsesBadRequestStatus(t *testing.T) {
	err := NewNotFound("Note does not exist")
	if err.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", err.StatusCode)
	}
	if err.Kind != KindNotFound {
		t.Fatalf("expected not_found kind, got %s", err.Kind)
	}
}

func TestIsUnauthorized(t *testing.T) {
	if !IsUnauthorized(ErrNotLoggedIn) {
		t.Fatal("expected ErrNotLoggedIn to be unauthorized")
	}
	if !IsUnauthorized(fmt.Errorf("wrapped: %w", ErrAccountDisabled)) {
		t.Fatal("expected wrapped ErrAccountDisabled to be unauthorized")
	}
	if IsUnauthorized(ErrNotFound) {
		t.Fatal("expected ErrNotFound not to be unauthorized")
	}
	if IsUnauthorized(stdErrors.New("plain")) {
		t.Fatal("expected plain error not to be unauthorized")
	}
}
