package domain

// Category groups catalog products by the kind of pet they serve
type Category string

const (
	CategoryDog         Category = "Dog"
	CategoryCat         Category = "Cat"
	CategoryBird        Category = "Bird"
	CategorySmallPet    Category = "Small Pet"
	CategoryAccessories Category = "Accessories"

	// CategoryAll is the filter value that matches every category
	CategoryAll Category = "All"
)

// Categories lists every product category in display order
var Categories = []Category{
	CategoryDog,
	CategoryCat,
	CategoryBird,
	CategorySmallPet,
	CategoryAccessories,
}

// Valid reports whether c is a known product category
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product represents a single catalog entry
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	Image       string   `json:"image"`
	Rating      float64  `json:"rating"`
	Reviews     int      `json:"reviews"`
	Badge       string   `json:"badge,omitempty"` // e.g. "New", "Bestseller"
}

// ProductFilter is the category and inclusive price predicate used by the shop view
type ProductFilter struct {
	Category Category `form:"category" json:"category"`
	MinPrice *float64 `form:"minPrice" json:"minPrice,omitempty"`
	MaxPrice *float64 `form:"maxPrice" json:"maxPrice,omitempty"`
}

// FeaturedProducts is the home page selection
type FeaturedProducts struct {
	Featured    []Product `json:"featured"`
	BestSellers []Product `json:"bestSellers"`
}
