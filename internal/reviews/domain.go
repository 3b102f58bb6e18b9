package reviews

import (
	"time"

	"github.com/techshop/storefront/internal/shared"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

// Review is one user's rating of a product.
type Review struct {
	ID                 int64
	ProductID          int64
	UserID             int64
	UserName           string
	Rating             int
	Comment            string
	IsVerifiedPurchase bool
	HelpfulCount       int
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// ReviewView is the JSON representation returned to clients.
type ReviewView struct {
	ID                 int64     `json:"id"`
	Rating             int       `json:"rating"`
	Comment            string    `json:"comment"`
	UserName           string    `json:"userName"`
	IsVerifiedPurchase bool      `json:"isVerifiedPurchase"`
	CreatedAt          time.Time `json:"createdAt"`
	HelpfulCount       int       `json:"helpfulCount"`
}

// View converts a review for output.
func (r Review) View() ReviewView {
	return ReviewView{
		ID:                 r.ID,
		Rating:             r.Rating,
		Comment:            r.Comment,
		UserName:           r.UserName,
		IsVerifiedPurchase: r.IsVerifiedPurchase,
		CreatedAt:          r.CreatedAt,
		HelpfulCount:       r.HelpfulCount,
	}
}

var (
	ErrAlreadyReviewed = shared.NewError(shared.ErrBadRequest, "reviews: product already reviewed", shared.MsgReviewDuplicate)
	ErrReviewNotFound  = shared.NewError(shared.ErrNotFound, "reviews: review not found", shared.MsgResourceNotFound, "Review")
	ErrProductNotFound = shared.NewError(shared.ErrNotFound, "reviews: product not found", shared.MsgResourceNotFound, "Product")
	ErrInvalidRating   = shared.NewError(shared.ErrValidation, "reviews: rating must be between 1 and 5", shared.MsgValidation)
)

// Rating is the aggregated score of a product. Average is rounded to one
// decimal and is 0 when the product has no reviews.
type Rating struct {
	Average float64
	Count   int
}
