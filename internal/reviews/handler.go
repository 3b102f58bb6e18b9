package reviews

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/techshop/storefront/internal/auth"
	"github.com/techshop/storefront/internal/platform/httpx"
	"github.com/techshop/storefront/internal/shared"
)

// Handler exposes review endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a review handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator()}
}

// MountRoutes registers review routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/product/{productID}", func(r chi.Router) {
		r.Post("/", h.add)
		r.Get("/", h.list)
		r.Get("/rating", h.rating)
	})
	r.Post("/{reviewID}/helpful", h.helpful)
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

var errBadID = shared.NewError(shared.ErrBadRequest, "reviews: invalid id", shared.MsgValidation)

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, h.logger, auth.ErrNotAuthenticated)
		return
	}
	productID, ok := pathID(r, "productID")
	if !ok {
		httpx.RespondError(w, r, h.logger, errBadID)
		return
	}
	var req reviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondValidation(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, r, err)
		return
	}
	review, err := h.service.Add(r.Context(), caller.Identity, productID, req.Rating, req.Comment)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	h.logger.Info("review added", slog.Int64("review_id", review.ID), slog.Int64("product_id", productID))
	httpx.JSON(w, http.StatusOK, review.View())
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "productID")
	if !ok {
		httpx.RespondError(w, r, h.logger, errBadID)
		return
	}
	number, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	page, err := h.service.List(r.Context(), productID, shared.NewPageRequest(number, size))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) rating(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "productID")
	if !ok {
		httpx.RespondError(w, r, h.logger, errBadID)
		return
	}
	rating, err := h.service.AverageRating(r.Context(), productID)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rating.Average)
}

func (h *Handler) helpful(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(r, "reviewID")
	if !ok {
		httpx.RespondError(w, r, h.logger, errBadID)
		return
	}
	if err := h.service.MarkHelpful(r.Context(), reviewID); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
