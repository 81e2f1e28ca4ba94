package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("order %s not found", "x"), http.StatusNotFound},
		{DataValidationFailed("bad quantity"), http.StatusBadRequest},
		{Business("insufficient balance"), http.StatusBadRequest},
		{Duplicate("report exists"), http.StatusConflict},
		{Forbidden("not yours"), http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("wallet")), http.StatusNotFound},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("confirm report: %w", Business("order item has already been refunded"))
	if !Is(err, KindBusiness) {
		t.Fatalf("expected business kind")
	}
	if Is(err, KindNotFound) {
		t.Fatalf("unexpected not found kind")
	}
	if Is(errors.New("plain"), KindBusiness) {
		t.Fatalf("plain error must not match")
	}
}
