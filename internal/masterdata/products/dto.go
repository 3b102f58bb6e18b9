package products

// ProductForm is the body accepted when creating a product. Category is the
// parent category id.
type ProductForm struct {
	Name             string  `json:"name" validate:"required,notblank,max=80"`
	Description      string  `json:"description" validate:"required,notblank,max=255"`
	ShortDescription string  `json:"shortDescription" validate:"required,notblank,max=80"`
	Quantity         int     `json:"quantity" validate:"gte=0"`
	Price            float64 `json:"price" validate:"gt=0"`
	Image            string  `json:"image" validate:"required,notblank,max=255"`
	Category         int64   `json:"category" validate:"required,gt=0"`
}

func (f ProductForm) toProduct() Product {
	return Product{
		Name:             f.Name,
		Description:      f.Description,
		ShortDescription: f.ShortDescription,
		Quantity:         f.Quantity,
		Price:            f.Price,
		Image:            f.Image,
		CategoryID:       f.Category,
	}
}

// ProductPage is the listing envelope consumed by the storefront.
type ProductPage struct {
	Total int       `json:"total"`
	List  []Product `json:"list"`
}
