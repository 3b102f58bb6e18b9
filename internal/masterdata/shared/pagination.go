package shared

import (
	"net/url"
	"strconv"
	"strings"

	internalShared "github.com/techshop/storefront/internal/shared"
)

// ListFilters represents catalog listing filters.
type ListFilters struct {
	Search     string
	Page       internalShared.PageRequest
	CategoryID *int64
}

// ParseListFilters reads q, pageNumber and pageSize. Missing or invalid
// numbers fall back to the first page of default size.
func ParseListFilters(values url.Values) ListFilters {
	number, _ := strconv.Atoi(values.Get(ParamPageNumber))
	size, _ := strconv.Atoi(values.Get(ParamPageSize))
	filters := ListFilters{
		Search: strings.TrimSpace(values.Get(ParamQuery)),
		Page:   internalShared.NewPageRequest(number, size),
	}
	if raw := values.Get("categoryId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filters.CategoryID = &id
		}
	}
	return filters
}

// ParseID parses a positive path identifier.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
