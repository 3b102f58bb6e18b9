package shared

const (
	// Query parameters of catalog listings.
	ParamQuery      = "q"
	ParamPageNumber = "pageNumber"
	ParamPageSize   = "pageSize"

	// Maximum field lengths.
	MaxNameLength        = 80
	MaxDescriptionLength = 255
)
