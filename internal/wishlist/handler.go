package wishlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/techshop/storefront/internal/auth"
	"github.com/techshop/storefront/internal/platform/httpx"
	"github.com/techshop/storefront/internal/shared"
)

// Handler exposes wishlist endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a wishlist handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers wishlist routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Post("/add/{productID}", h.add)
	r.Delete("/remove/{productID}", h.remove)
	r.Post("/share/toggle", h.toggle)
	r.Get("/shared/{token}", h.shared)
}

var errBadID = shared.NewError(shared.ErrBadRequest, "wishlist: invalid product id", shared.MsgValidation)

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	h.withCaller(w, r, func(ctx context.Context, userID int64) (Wishlist, error) {
		return h.service.GetOrCreate(ctx, userID)
	})
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.RespondError(w, r, h.logger, errBadID)
		return
	}
	h.withCaller(w, r, func(ctx context.Context, userID int64) (Wishlist, error) {
		return h.service.Add(ctx, userID, productID)
	})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.RespondError(w, r, h.logger, errBadID)
		return
	}
	h.withCaller(w, r, func(ctx context.Context, userID int64) (Wishlist, error) {
		return h.service.Remove(ctx, userID, productID)
	})
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	h.withCaller(w, r, func(ctx context.Context, userID int64) (Wishlist, error) {
		wl, err := h.service.ToggleSharing(ctx, userID)
		if err == nil {
			h.logger.Info("wishlist sharing toggled",
				slog.Int64("wishlist_id", wl.ID),
				slog.Bool("public", wl.IsPublic))
		}
		return wl, err
	})
}

func (h *Handler) shared(w http.ResponseWriter, r *http.Request) {
	wl, err := h.service.Shared(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, wl.View())
}

func (h *Handler) withCaller(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) (Wishlist, error)) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, h.logger, auth.ErrNotAuthenticated)
		return
	}
	wl, err := op(r.Context(), caller.Identity.ID)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, wl.View())
}
