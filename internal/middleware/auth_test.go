package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/auth"
	"github.com/monocle-dev/planboard/internal/models"
	"github.com/monocle-dev/planboard/internal/types"
)

type fakeUsers map[uint]models.User

func (f fakeUsers) GetUser(_ context.Context, id uint) (models.User, error) {
	if id == 500 {
		return models.User{}, errors.New("connection reset")
	}
	user, ok := f[id]
	if !ok {
		return models.User{}, apperror.NotFound("User not found")
	}
	return user, nil
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.Issuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer, err := auth.NewIssuer("middleware-secret", 0)
	if err != nil {
		t.Fatal(err)
	}

	users := fakeUsers{
		7: {BaseModel: models.BaseModel{ID: 7}, Name: "Alice", Email: "a@x.com"},
	}

	r := gin.New()
	r.GET("/me", AuthMiddleware(issuer, users), func(ctx *gin.Context) {
		user, _ := ctx.Get(types.ContextUserKey)
		ctx.JSON(http.StatusOK, user)
	})

	return r, issuer
}

func TestAuthMiddleware(t *testing.T) {
	r, issuer := newAuthRouter(t)

	valid, _ := issuer.Generate(7, "a@x.com")
	ghost, _ := issuer.Generate(8, "ghost@x.com")
	broken, _ := issuer.Generate(500, "db@x.com")

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing header", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, "", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", "", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", "", http.StatusUnauthorized},
		{"deleted user", "Bearer " + ghost, "", http.StatusUnauthorized},
		{"store failure", "Bearer " + broken, "", http.StatusInternalServerError},
		{"valid header", "Bearer " + valid, "", http.StatusOK},
		{"valid query token", "", "?access_token=" + valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareSetsUser(t *testing.T) {
	r, issuer := newAuthRouter(t)
	token, _ := issuer.Generate(7, "a@x.com")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var user AuthenticatedUser
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatal(err)
	}
	if user.ID != 7 || user.Name != "Alice" {
		t.Fatalf("user = %+v", user)
	}
}
