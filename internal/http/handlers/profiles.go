package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/Nmomos/hedgehog-reservation/internal/config"
	"github.com/Nmomos/hedgehog-reservation/internal/domain/profile"
	"github.com/Nmomos/hedgehog-reservation/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ProfileStore interface {
	GetByUsername(ctx context.Context, username string) (profile.Profile, error)
	UpdateForUser(ctx context.Context, userID int64, req profile.UpdateRequest) (profile.Profile, error)
}

type ProfilesHandler struct {
	repo ProfileStore
}

func NewProfilesHandler(repo ProfileStore) *ProfilesHandler {
	return &ProfilesHandler{repo: repo}
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,}$`)

type UpdateProfileRequest struct {
	ProfileUpdate profile.UpdateRequest `json:"profile_update" binding:"required"`
}

func (h *ProfilesHandler) GetProfileByUsername(ctx *gin.Context) {
	username := ctx.Param("username")

	if !usernamePattern.MatchString(username) {
		RespondUnprocessable(ctx, "username must be at least 3 characters of letters, digits, '_' or '-'", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	p, err := h.repo.GetByUsername(cctx, username)

	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "No profile found with that username.")
			return
		}

		RespondInternal(ctx, "Could not fetch profile")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ProfilesHandler) UpdateOwnProfile(ctx *gin.Context) {
	current, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	updated, err := h.repo.UpdateForUser(cctx, current.ID, req.ProfileUpdate)

	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "No profile found for the current user.")
			return
		}

		RespondInternal(ctx, "Could not update profile")
		return
	}

	ctx.JSON(http.StatusOK, updated)
}
