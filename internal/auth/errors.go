package auth

import "github.com/techshop/storefront/internal/shared"

// Authentication errors surfaced to the controller layer.
var (
	ErrEmailTaken         = shared.NewError(shared.ErrBadRequest, "auth: email already taken", shared.MsgFieldTaken, "EMAIL")
	ErrInvalidCredentials = shared.NewError(shared.ErrBadRequest, "auth: invalid credentials", shared.MsgAuthFailed)
	ErrNotAuthenticated   = shared.NewError(shared.ErrForbidden, "auth: not authenticated", shared.MsgNotAuthenticated)
	ErrUserVanished       = shared.NewError(shared.ErrBadRequest, "auth: token subject no longer exists", shared.MsgNotFound, "USER")
	// ErrIdentityNotFound is returned by credential stores for unknown emails.
	ErrIdentityNotFound = shared.NewError(shared.ErrNotFound, "auth: identity not found", shared.MsgNotFound, "USER")
)
