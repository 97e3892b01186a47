package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/planboard/internal/apperror"
)

func TestBindJSONReportsFirstInvalidField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		body string
		want string
	}{
		{`{"currentPassword":"old","newPassword":"abc"}`, "newPassword must be at least 6 characters"},
		{`{"newPassword":"abcdef"}`, "currentPassword is required"},
		{`{"currentPassword":`, "Invalid request"},
	}

	for _, tt := range tests {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		ctx.Request = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(tt.body))
		ctx.Request.Header.Set("Content-Type", "application/json")

		var body ChangePasswordRequest
		err := bindJSON(ctx, &body)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Fatalf("bindJSON(%s) = %v, want validation error", tt.body, err)
		}
		if err.Error() != tt.want {
			t.Errorf("bindJSON(%s) = %q, want %q", tt.body, err.Error(), tt.want)
		}
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(ctx, errors.New("pq: connection refused"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "pq") {
		t.Fatalf("internal detail leaked: %s", w.Body.String())
	}
}
