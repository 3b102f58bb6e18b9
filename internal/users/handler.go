package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/techshop/storefront/internal/auth"
	"github.com/techshop/storefront/internal/platform/httpx"
)

// ProfileUpdater changes the profile of the identity bound to ctx.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, update auth.ProfileUpdate) (*auth.Identity, error)
}

// Handler manages user profile endpoints.
type Handler struct {
	logger    *slog.Logger
	profiles  ProfileUpdater
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, profiles ProfileUpdater) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, profiles: profiles, validator: httpx.NewValidator()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Patch("/", h.updateProfile)
}

// Both fields are optional; blank ones keep the stored value.
type profileRequest struct {
	Name    string `json:"name" validate:"max=16"`
	Surname string `json:"surname" validate:"max=16"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondValidation(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, r, err)
		return
	}
	ident, err := h.profiles.UpdateProfile(r.Context(), auth.ProfileUpdate{Name: req.Name, Surname: req.Surname})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	h.logger.Info("profile updated", slog.Int64("user_id", ident.ID))
	httpx.JSON(w, http.StatusCreated, ident.View())
}
