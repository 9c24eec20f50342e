package catalog

import "github.com/pawradise/backend/internal/domain"

// StaticCatalog serves the built-in product dataset. It is read-only and safe
// for concurrent use.
type StaticCatalog struct {
	products []domain.Product
	byID     map[string]int
}

// NewStaticCatalog creates a catalog over the given products. A nil slice
// selects the default Pawradise dataset.
func NewStaticCatalog(products []domain.Product) *StaticCatalog {
	if products == nil {
		products = DefaultProducts()
	}

	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}

	return &StaticCatalog{
		products: products,
		byID:     byID,
	}
}

// All returns a copy of every product in declaration order
func (c *StaticCatalog) All() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// FindByID looks up a product by id
func (c *StaticCatalog) FindByID(id string) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// DefaultProducts returns the storefront dataset
func DefaultProducts() []domain.Product {
	return []domain.Product{
		{
			ID:          "1",
			Name:        "Premium Grain-Free Dog Kibble",
			Description: "High-protein, grain-free formula for active adult dogs. Made with real chicken and sweet potatoes.",
			Price:       49.99,
			Category:    domain.CategoryDog,
			Image:       "https://images.unsplash.com/photo-1568640347023-a616a30bc3bd?auto=format&fit=crop&w=800&q=80",
			Rating:      4.8,
			Reviews:     124,
			Badge:       "Bestseller",
		},
		{
			ID:          "2",
			Name:        "Interactive Laser Cat Toy",
			Description: "Automatic laser toy with 3 speed settings to keep your feline friend entertained for hours.",
			Price:       24.99,
			Category:    domain.CategoryCat,
			Image:       "https://images.unsplash.com/photo-1501820488136-72669149e0d4?auto=format&fit=crop&w=800&q=80",
			Rating:      4.5,
			Reviews:     89,
		},
		{
			ID:          "3",
			Name:        "Cozy Plush Donut Bed",
			Description: "Ultra-soft calming bed for small dogs and cats. Promotes better sleep and joint relief.",
			Price:       35.50,
			Category:    domain.CategoryAccessories,
			Image:       "https://images.unsplash.com/photo-1541599540903-216a46ca1dc0?auto=format&fit=crop&w=800&q=80",
			Rating:      4.9,
			Reviews:     210,
			Badge:       "Trending",
		},
		{
			ID:          "4",
			Name:        "Durable Rubber Chew Bone",
			Description: "Indestructible rubber toy for aggressive chewers. Textured surface cleans teeth.",
			Price:       15.99,
			Category:    domain.CategoryDog,
			Image:       "https://images.unsplash.com/photo-1583511655857-d19b40a7a54e?auto=format&fit=crop&w=800&q=80",
			Rating:      4.7,
			Reviews:     340,
		},
		{
			ID:          "5",
			Name:        "Luxury Bird Cage",
			Description: "Spacious multi-level cage for parakeets and cockatiels. Includes feeders and perches.",
			Price:       120.00,
			Category:    domain.CategoryBird,
			Image:       "https://images.unsplash.com/photo-1520638023360-6def43369781?auto=format&fit=crop&w=800&q=80",
			Rating:      4.6,
			Reviews:     45,
		},
		{
			ID:          "6",
			Name:        "Hamster Habitat Deluxe",
			Description: "Multi-level habitat with tunnels, wheel, and water bottle. Easy to clean.",
			Price:       55.00,
			Category:    domain.CategorySmallPet,
			Image:       "https://images.unsplash.com/photo-1425082661705-1834bfd09dca?auto=format&fit=crop&w=800&q=80",
			Rating:      4.4,
			Reviews:     67,
		},
		{
			ID:          "7",
			Name:        "Cat Scratching Post Tower",
			Description: "Tall sisal-wrapped scratching post with a cozy perch on top.",
			Price:       42.99,
			Category:    domain.CategoryCat,
			Image:       "https://images.unsplash.com/photo-1574158622682-e40e69881006?auto=format&fit=crop&w=800&q=80",
			Rating:      4.8,
			Reviews:     156,
		},
		{
			ID:          "8",
			Name:        "Automatic Pet Feeder",
			Description: "Programmable feeder with voice recording and portion control. WiFi enabled.",
			Price:       89.99,
			Category:    domain.CategoryAccessories,
			Image:       "https://images.unsplash.com/photo-1516734212186-a967f81ad0d7?auto=format&fit=crop&w=800&q=80",
			Rating:      4.3,
			Reviews:     98,
			Badge:       "Tech",
		},
		{
			ID:          "9",
			Name:        "Organic Catnip Treat Mix",
			Description: "A blend of organic catnip and silvervine. Irresistible to 90% of cats.",
			Price:       9.99,
			Category:    domain.CategoryCat,
			Image:       "https://images.unsplash.com/photo-1513245543132-31f507417b26?auto=format&fit=crop&w=800&q=80",
			Rating:      4.9,
			Reviews:     412,
		},
		{
			ID:          "10",
			Name:        "Reflective Dog Leash",
			Description: "Heavy-duty 5ft leash with padded handle and reflective stitching for night safety.",
			Price:       18.50,
			Category:    domain.CategoryDog,
			Image:       "https://images.unsplash.com/photo-1605639156481-244775d6f803?auto=format&fit=crop&w=800&q=80",
			Rating:      4.7,
			Reviews:     130,
		},
	}
}
