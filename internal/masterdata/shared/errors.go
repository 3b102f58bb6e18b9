package shared

import (
	internalShared "github.com/techshop/storefront/internal/shared"
)

var (
	ErrInvalidID = internalShared.NewError(internalShared.ErrBadRequest, "masterdata: invalid id", internalShared.MsgValidation)
)

// NotFound returns a localizable not found error for entity.
func NotFound(entity string) error {
	return internalShared.NewError(internalShared.ErrNotFound, "masterdata: "+entity+" not found", internalShared.MsgResourceNotFound, entity)
}

// Duplicate returns a localizable duplicate error naming the taken field.
func Duplicate(field string) error {
	return internalShared.NewError(internalShared.ErrBadRequest, "masterdata: "+field+" already taken", internalShared.MsgFieldTaken, field)
}

// Invalid returns a validation error with a plain message.
func Invalid(text string) error {
	return internalShared.NewError(internalShared.ErrValidation, "masterdata: "+text, internalShared.MsgValidation)
}
