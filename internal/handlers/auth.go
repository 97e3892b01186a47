package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/auth"
	"github.com/monocle-dev/planboard/internal/logging"
	"github.com/monocle-dev/planboard/internal/models"
	"github.com/monocle-dev/planboard/internal/types"
	"github.com/monocle-dev/planboard/internal/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

var errBadCredentials = apperror.Unauthenticated("Invalid email or password")

func (h *Handler) Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	name, err := trimmedText("name", body.Name, 2)
	if err != nil {
		respondError(ctx, err)
		return
	}

	passwordHash, err := auth.HashPassword(body.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	user, err := h.Store.CreateUser(ctx.Request.Context(), name, body.Email, passwordHash)
	if err != nil {
		respondError(ctx, err)
		return
	}

	h.respondWithToken(ctx, user)
}

func (h *Handler) Login(ctx *gin.Context) {
	var body LoginRequest

	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	user, err := h.Store.GetUserByEmail(ctx.Request.Context(), body.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			respondError(ctx, errBadCredentials)
			return
		}
		respondError(ctx, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, body.Password) {
		respondError(ctx, errBadCredentials)
		return
	}

	h.respondWithToken(ctx, user)
}

func (h *Handler) respondWithToken(ctx *gin.Context, user models.User) {
	token, err := h.Issuer.Generate(user.ID, user.Email)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.AuthResponse{
		User:  types.NewUserResponse(user),
		Token: token,
	})
}

func (h *Handler) Me(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	user, err := h.Store.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": types.NewUserResponse(user)})
}

// ChangePassword replaces the caller's password. Tokens issued before the
// change stay valid until they expire.
func (h *Handler) ChangePassword(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	var body ChangePasswordRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	user, err := h.Store.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, body.CurrentPassword) {
		respondError(ctx, apperror.Unauthenticated("Current password is incorrect"))
		return
	}

	passwordHash, err := auth.HashPassword(body.NewPassword)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.Store.UpdatePasswordHash(ctx.Request.Context(), user.ID, passwordHash); err != nil {
		respondError(ctx, err)
		return
	}

	logging.Logger.WithField("user_id", user.ID).Info("Password changed")

	ctx.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
