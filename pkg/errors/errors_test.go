package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code       Code
		wantStatus int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeInsufficientStock, http.StatusConflict},
		{CodeIdempotency, http.StatusConflict},
		{CodeInternal, http.StatusInternalServerError},
		{CodeDependency, http.StatusServiceUnavailable},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.wantStatus {
			t.Errorf("MetadataFor(%s).HTTPStatus = %d, want %d", tc.code, got, tc.wantStatus)
		}
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("row not found")
	err := Wrap(CodeNotFound, cause, "order lookup failed")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error should match its cause via errors.Is")
	}
	if err.Code() != CodeNotFound {
		t.Fatalf("Code() = %s, want %s", err.Code(), CodeNotFound)
	}
}

func TestAsThroughChain(t *testing.T) {
	t.Parallel()

	inner := New(CodeStateConflict, "cannot ship a cancelled order")
	outer := Wrap(CodeInternal, inner, "update status")

	// As walks the chain and returns the outermost typed error.
	typed := As(outer)
	if typed == nil {
		t.Fatal("As should find the typed error")
	}
	if typed.Code() != CodeInternal {
		t.Fatalf("Code() = %s, want %s", typed.Code(), CodeInternal)
	}

	if As(stdErrors.New("plain")) != nil {
		t.Fatal("As on a plain error should return nil")
	}
}

func TestInsufficientStockDetails(t *testing.T) {
	t.Parallel()

	err := InsufficientStock("prod-1", 2, 5)
	if err.Code() != CodeInsufficientStock {
		t.Fatalf("Code() = %s, want %s", err.Code(), CodeInsufficientStock)
	}

	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatalf("Details() = %T, want map", err.Details())
	}
	if details["available"] != 2 || details["requested"] != 5 {
		t.Fatalf("unexpected details: %v", details)
	}
}
