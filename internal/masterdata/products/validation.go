package products

import (
	"strings"
	"unicode/utf8"

	"github.com/techshop/storefront/internal/masterdata/shared"
)

func normalize(p Product) Product {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.ShortDescription = strings.TrimSpace(p.ShortDescription)
	p.Image = strings.TrimSpace(p.Image)
	return p
}

func (s *Service) validate(p Product) error {
	if p.Name == "" || utf8.RuneCountInString(p.Name) > shared.MaxNameLength {
		return shared.Invalid("product name is required and at most 80 characters")
	}
	if p.ShortDescription == "" || utf8.RuneCountInString(p.ShortDescription) > shared.MaxNameLength {
		return shared.Invalid("product short description is required and at most 80 characters")
	}
	if p.Description == "" || utf8.RuneCountInString(p.Description) > shared.MaxDescriptionLength {
		return shared.Invalid("product description is required and at most 255 characters")
	}
	if p.Image == "" || utf8.RuneCountInString(p.Image) > shared.MaxDescriptionLength {
		return shared.Invalid("product image is required and at most 255 characters")
	}
	if p.Quantity < 0 {
		return shared.Invalid("product quantity must not be negative")
	}
	if p.Price <= 0 {
		return shared.Invalid("product price must be positive")
	}
	if p.CategoryID <= 0 {
		return shared.Invalid("product category is required")
	}
	return nil
}
