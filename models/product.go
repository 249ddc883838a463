package models

// Product is read-only catalog data. The cart copies what it needs at add time.
type Product struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Description  string   `json:"description"`
	Images       []string `json:"images"`
	Category     string   `json:"category,omitempty"`
	FontEnabled  bool     `json:"fontEnabled"`
	StyleEnabled bool     `json:"styleEnabled"`
}

// PrimaryImage returns the first image reference, or "" when the product has none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
