package domain

import "fmt"

type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryFashion     Category = "Fashion & Beauty"
	CategoryHomeGarden  Category = "Home & Garden"
	CategoryVehicles    Category = "Vehicles"
	CategoryBooks       Category = "Books"
	CategorySports      Category = "Sports"
	CategoryOther       Category = "Other"
)

// CategoryAll is the listing selector value that disables category filtering.
// It is never a valid category for an ad.
const CategoryAll = "All"

const DefaultSeller = "Anonymous"

// Categories lists the closed category set in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryFashion,
	CategoryHomeGarden,
	CategoryVehicles,
	CategoryBooks,
	CategorySports,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Ad is a single classified listing as persisted in the board's store.
// Price is nil when the seller asked to be contacted for a price.
type Ad struct {
	Title       string   `json:"title"`
	Seller      string   `json:"seller"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Price       *float64 `json:"price,omitempty"`
	Contact     string   `json:"contact"`
	ImageBase64 string   `json:"image_base64,omitempty"`
}

func (a Ad) HasImage() bool {
	return a.ImageBase64 != ""
}

// PriceText renders the price the way the board shows it.
func (a Ad) PriceText() string {
	if a.Price == nil {
		return "Contact for price"
	}
	return fmt.Sprintf("$%.2f", *a.Price)
}

// AdInput is the raw submission before validation and normalization.
type AdInput struct {
	Title       string
	Seller      string
	Category    string
	Description string
	Price       float64
	Contact     string
	Image       []byte
}

type ListFilter struct {
	Category string
	Search   string
}
