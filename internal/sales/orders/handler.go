package orders

import (
	"log/slog"
	"net/http"

	"github.com/techshop/storefront/internal/auth"
	"github.com/techshop/storefront/internal/platform/httpx"
	internalShared "github.com/techshop/storefront/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// Create accepts a JSON array of product ids.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, h.logger, auth.ErrNotAuthenticated)
		return
	}
	var productIDs []int64
	if err := httpx.DecodeJSON(r, &productIDs); err != nil {
		httpx.RespondValidation(w, r, err)
		return
	}
	key := r.Header.Get(internalShared.IdempotencyHeader)
	order, err := h.service.CreateWithKey(r.Context(), caller.Identity.ID, productIDs, key)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	h.logger.Info("order placed",
		slog.Int64("order_id", order.ID),
		slog.Int64("user_id", caller.Identity.ID),
		slog.Int("products", len(order.ProductIDs)))
	httpx.JSON(w, http.StatusCreated, toResponse(order))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, h.logger, auth.ErrNotAuthenticated)
		return
	}
	orders, err := h.service.ListMine(r.Context(), caller.Identity.ID)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toResponse(o))
	}
	httpx.JSON(w, http.StatusOK, out)
}
