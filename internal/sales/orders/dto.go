package orders

import "time"

type OrderResponse struct {
	ID               int64       `json:"id"`
	TotalAmount      float64     `json:"totalAmount"`
	Status           OrderStatus `json:"status"`
	CreatedAt        time.Time   `json:"createdAt"`
	NumberOfProducts int         `json:"numberOfProducts"`
}

func toResponse(o Order) OrderResponse {
	return OrderResponse{
		ID:               o.ID,
		TotalAmount:      o.TotalAmount,
		Status:           o.Status,
		CreatedAt:        o.CreatedAt,
		NumberOfProducts: len(o.ProductIDs),
	}
}
