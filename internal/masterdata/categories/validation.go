package categories

import (
	"strings"
	"unicode/utf8"

	"github.com/techshop/storefront/internal/masterdata/shared"
)

func normalize(c Category) Category {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	return c
}

func (s *Service) validate(c Category) error {
	if c.Name == "" {
		return shared.Invalid("category name is required")
	}
	if utf8.RuneCountInString(c.Name) > shared.MaxNameLength {
		return shared.Invalid("category name is too long")
	}
	if c.Description == "" {
		return shared.Invalid("category description is required")
	}
	if utf8.RuneCountInString(c.Description) > shared.MaxDescriptionLength {
		return shared.Invalid("category description is too long")
	}
	return nil
}
