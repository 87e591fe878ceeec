package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFromErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		kind   Kind
	}{
		{ErrNotFound("appointment_not_found", "missing"), http.StatusNotFound, KindNotFound},
		{ErrForbidden("not_owner", ""), http.StatusForbidden, KindForbidden},
		{ErrConflict("availability_exists", ""), http.StatusConflict, KindConflict},
		{ErrScheduleConflict("active_outside_window", "10:00"), http.StatusConflict, KindScheduleConflict},
		{ErrInvalidState("not_open", ""), http.StatusBadRequest, KindInvalidState},
		{ErrBusiness("too_soon"), http.StatusBadRequest, KindInvalidOperation},
		{fmt.Errorf("wrapped: %w", ErrUnauthorized("token_expired", "")), http.StatusUnauthorized, KindUnauthorized},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		FromError(c, tc.err, "fallback")

		if w.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, w.Code)
		}

		var body HTTPError
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Kind != tc.kind {
			t.Fatalf("%v: expected kind %s, got %s", tc.err, tc.kind, body.Kind)
		}
	}
}

func TestFromErrorHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FromError(c, errors.New("pq: connection refused"), "failed_to_update")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	var body HTTPError
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Code != "failed_to_update" || body.Message == "pq: connection refused" {
		t.Fatalf("internal error leaked: %+v", body)
	}
}

func TestIsBusiness(t *testing.T) {
	err := fmt.Errorf("ctx: %w", ErrConflict("availability_exists", ""))
	if !IsBusiness(err, "availability_exists") {
		t.Fatal("expected match through wrapping")
	}
	if kind, ok := KindOf(err); !ok || kind != KindConflict {
		t.Fatalf("unexpected kind %q", kind)
	}
}
