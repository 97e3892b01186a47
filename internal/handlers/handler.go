package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/auth"
	"github.com/monocle-dev/planboard/internal/logging"
	"github.com/monocle-dev/planboard/internal/services"
	"github.com/monocle-dev/planboard/internal/store"
	"github.com/sirupsen/logrus"
)

// Handler holds what the HTTP handlers share. Hub and Notifier may be nil.
type Handler struct {
	Store    *store.Store
	Issuer   *auth.Issuer
	Hub      *Hub
	Notifier *services.Notifier
}

func New(st *store.Store, issuer *auth.Issuer, hub *Hub, notifier *services.Notifier) *Handler {
	return &Handler{
		Store:    st,
		Issuer:   issuer,
		Hub:      hub,
		Notifier: notifier,
	}
}

func respondError(ctx *gin.Context, err error) {
	status := apperror.StatusCode(err)

	if status == http.StatusInternalServerError {
		logging.Logger.WithError(err).WithFields(logrus.Fields{
			"method": ctx.Request.Method,
			"path":   ctx.FullPath(),
		}).Error("Request failed")
	}

	ctx.JSON(status, gin.H{"error": apperror.PublicMessage(err)})
}

// bindJSON decodes the body into dst and reports binding failures as
// validation errors naming the first offending field.
func bindJSON(ctx *gin.Context, dst interface{}) error {
	err := ctx.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperror.Validation("%s", describeField(verrs[0]))
	}

	return apperror.Validation("Invalid request")
}

// trimmedText trims value and requires at least min characters to remain.
func trimmedText(field, value string, min int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if utf8.RuneCountInString(trimmed) < min {
		return "", apperror.Validation("%s must be at least %d characters", field, min)
	}
	return trimmed, nil
}

func describeField(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// broadcast tells connected boards of projectID to re-fetch.
func (h *Handler) broadcast(projectID uint) {
	if h.Hub != nil {
		h.Hub.BroadcastRefresh(projectID)
	}
}
