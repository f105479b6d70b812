package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Nmomos/hedgehog-reservation/internal/config"
	"github.com/Nmomos/hedgehog-reservation/internal/domain/hedgehog"
	"github.com/Nmomos/hedgehog-reservation/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type HedgehogStore interface {
	Create(ctx context.Context, req hedgehog.CreateRequest, ownerID int64) (hedgehog.Hedgehog, error)
	GetByID(ctx context.Context, id int64) (hedgehog.Hedgehog, error)
	ListForOwner(ctx context.Context, ownerID int64) ([]hedgehog.Hedgehog, error)
	Update(ctx context.Context, merged hedgehog.Hedgehog) (hedgehog.Hedgehog, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type HedgehogsHandler struct {
	repo HedgehogStore
}

func NewHedgehogsHandler(repo HedgehogStore) *HedgehogsHandler {
	return &HedgehogsHandler{repo: repo}
}

const ctxHedgehogKey = "hedgehogs.loaded"

type CreateHedgehogRequest struct {
	NewHedgehog hedgehog.CreateRequest `json:"new_hedgehog" binding:"required"`
}

type UpdateHedgehogRequest struct {
	HedgehogUpdate hedgehog.UpdateRequest `json:"hedgehog_update" binding:"required"`
}

func hedgehogIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id < 1 {
		RespondUnprocessable(ctx, "hedgehog id must be a positive integer", nil)
		return 0, false
	}

	return id, true
}

func (h *HedgehogsHandler) CreateHedgehog(ctx *gin.Context) {
	var req CreateHedgehogRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !req.NewHedgehog.ColorType.Valid() {
		RespondUnprocessable(ctx, "Invalid request body", gin.H{"fields": []FieldError{
			{Field: "new_hedgehog.color_type", Rule: "oneof", Message: "must be one of SOLT & PEPPER, DARK GREY, CHOCOLATE"},
		}})
		return
	}

	current, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	created, err := h.repo.Create(cctx, req.NewHedgehog, current.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create hedgehog")
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *HedgehogsHandler) ListMyHedgehogs(ctx *gin.Context) {
	current, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	items, err := h.repo.ListForOwner(cctx, current.ID)

	if err != nil {
		RespondInternal(ctx, "Could not list hedgehogs")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"hedgehogs": items,
		"count":     len(items),
	})
}

// GetHedgehogByID is deliberately not owner gated: any authenticated user may
// read a hedgehog by id; only mutation is restricted to the owner.
func (h *HedgehogsHandler) GetHedgehogByID(ctx *gin.Context) {
	id, ok := hedgehogIDParam(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	found, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, hedgehog.ErrNotFound) {
			RespondNotFound(ctx, "No hedgehog found with that id.")
			return
		}

		RespondInternal(ctx, "Could not fetch hedgehog")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, found)
}

// RequireOwnership loads the addressed hedgehog ahead of the mutating
// handlers and rejects callers that do not own it. The loaded row is stashed
// on the context so handlers do not fetch twice.
func (h *HedgehogsHandler) RequireOwnership() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := hedgehogIDParam(ctx)

		if !ok {
			ctx.Abort()
			return
		}

		current, ok := middlewares.CurrentUser(ctx)

		if !ok {
			RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
			ctx.Abort()
			return
		}

		cctx, cancel := config.WithTimeout(2 * time.Second)

		defer cancel()

		found, err := h.repo.GetByID(cctx, id)

		if err != nil {
			if errors.Is(err, hedgehog.ErrNotFound) {
				RespondNotFound(ctx, "No hedgehog found with that id.")
			} else {
				RespondInternal(ctx, "Could not fetch hedgehog")
			}
			ctx.Abort()
			return
		}

		if found.Owner != current.ID {
			RespondForbidden(ctx, "Users are only able to modify hedgehogs they own.")
			ctx.Abort()
			return
		}

		ctx.Set(ctxHedgehogKey, found)

		ctx.Next()
	}
}

func loadedHedgehog(ctx *gin.Context) (hedgehog.Hedgehog, bool) {
	v, ok := ctx.Get(ctxHedgehogKey)
	if !ok {
		return hedgehog.Hedgehog{}, false
	}
	hh, ok := v.(hedgehog.Hedgehog)
	return hh, ok
}

func (h *HedgehogsHandler) UpdateHedgehog(ctx *gin.Context) {
	existing, ok := loadedHedgehog(ctx)

	if !ok {
		RespondInternal(ctx, "Could not update hedgehog")
		return
	}

	var req UpdateHedgehogRequest

	if !BindJSON(ctx, &req) {
		return
	}

	merged, err := req.HedgehogUpdate.ApplyTo(existing)

	if err != nil {
		switch {
		case errors.Is(err, hedgehog.ErrNullColor):
			RespondBadRequest(ctx, "null_color_type", "color_type cannot be set to null.")
		case errors.Is(err, hedgehog.ErrInvalidColor):
			RespondUnprocessable(ctx, "Invalid request body", gin.H{"fields": []FieldError{
				{Field: "hedgehog_update.color_type", Rule: "oneof", Message: "must be one of SOLT & PEPPER, DARK GREY, CHOCOLATE"},
			}})
		default:
			RespondInternal(ctx, "Could not update hedgehog")
		}
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	updated, err := h.repo.Update(cctx, merged)

	if err != nil {
		if errors.Is(err, hedgehog.ErrNotFound) {
			// deleted between the ownership check and the update
			RespondNotFound(ctx, "No hedgehog found with that id.")
			return
		}

		RespondInternal(ctx, "Could not update hedgehog")
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *HedgehogsHandler) DeleteHedgehog(ctx *gin.Context) {
	existing, ok := loadedHedgehog(ctx)

	if !ok {
		RespondInternal(ctx, "Could not delete hedgehog")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	deleted, err := h.repo.Delete(cctx, existing.ID)

	if err != nil {
		if errors.Is(err, hedgehog.ErrNotFound) {
			RespondNotFound(ctx, "No hedgehog found with that id.")
			return
		}

		RespondInternal(ctx, "Could not delete hedgehog")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"id": deleted})
}
