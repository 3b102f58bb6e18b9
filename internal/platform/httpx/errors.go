package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/techshop/storefront/internal/shared"
)

type messageKeyer interface {
	MessageKey() (string, []any)
}

// RespondError maps domain errors to HTTP responses using RFC7807. Classified
// errors get a localized detail; anything else becomes a generic 500 and the
// raw error only reaches the log.
func RespondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	lang := shared.LanguageFromContext(r.Context())
	detail := func(fallbackKey string, args ...any) string {
		var keyed messageKeyer
		if errors.As(err, &keyed) {
			key, keyArgs := keyed.MessageKey()
			return shared.Localize(lang, key, keyArgs...)
		}
		return shared.Localize(lang, fallbackKey, args...)
	}

	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", detail(shared.MsgResourceNotFound, "Resource"))
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", detail(shared.MsgValidation))
	case errors.Is(err, shared.ErrBadRequest):
		Problem(w, http.StatusBadRequest, "Bad Request", detail(shared.MsgValidation))
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", detail(shared.MsgAccessDenied))
	default:
		if logger != nil {
			logger.Error("unhandled request error",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Any("error", err))
		}
		Problem(w, http.StatusInternalServerError, "Internal Error", shared.Localize(lang, shared.MsgInternal))
	}
}

// RespondForbidden writes the localized access denied problem.
func RespondForbidden(w http.ResponseWriter, r *http.Request) {
	lang := shared.LanguageFromContext(r.Context())
	Problem(w, http.StatusForbidden, "Forbidden", shared.Localize(lang, shared.MsgAccessDenied))
}

// RespondValidation writes a 400 with a per-field error map when err comes
// from the validator, or a generic malformed body problem otherwise.
func RespondValidation(w http.ResponseWriter, r *http.Request, err error) {
	lang := shared.LanguageFromContext(r.Context())
	problem := ProblemDetail{
		Title:  "Validation Failed",
		Status: http.StatusBadRequest,
		Detail: shared.Localize(lang, shared.MsgValidation),
		Errors: FieldErrors(err),
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(problem)
}
