package products

// Product represents a catalog product
type Product struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	ShortDescription string  `json:"shortDescription"`
	Quantity         int     `json:"quantity"`
	Price            float64 `json:"price"`
	Image            string  `json:"image"`
	CategoryID       int64   `json:"categoryId"`
}
