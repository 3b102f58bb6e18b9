package wishlist

import (
	"time"

	"github.com/techshop/storefront/internal/masterdata/products"
	"github.com/techshop/storefront/internal/shared"
)

// Wishlist is a user's set of saved products. ShareToken identifies the
// wishlist on the public sharing endpoint while IsPublic is set.
type Wishlist struct {
	ID         int64
	UserID     int64
	Products   []products.Product
	IsPublic   bool
	ShareToken string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// View is the JSON representation of a wishlist.
type View struct {
	ID         int64              `json:"id"`
	Products   []products.Product `json:"products"`
	IsPublic   bool               `json:"isPublic"`
	ShareToken string             `json:"shareToken"`
}

func (w Wishlist) View() View {
	items := w.Products
	if items == nil {
		items = []products.Product{}
	}
	return View{ID: w.ID, Products: items, IsPublic: w.IsPublic, ShareToken: w.ShareToken}
}

var (
	ErrNotFound        = shared.NewError(shared.ErrNotFound, "wishlist: not found", shared.MsgResourceNotFound, "Wishlist")
	ErrPrivate         = shared.NewError(shared.ErrForbidden, "wishlist: not shared", shared.MsgWishlistPrivate)
	ErrProductNotFound = shared.NewError(shared.ErrNotFound, "wishlist: product not found", shared.MsgResourceNotFound, "Product")
)
