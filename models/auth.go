package models

import "time"

type AuthRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminUser is a back-office account allowed to manage the catalog.
type AdminUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"isActive"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      AdminUser `json:"user"`
}

// ProductRequest is the admin payload for creating or replacing a catalog product.
type ProductRequest struct {
	ID           string   `json:"id" validate:"required,max=64"`
	Name         string   `json:"name" validate:"required,max=255"`
	Price        float64  `json:"price" validate:"gte=0"`
	Description  string   `json:"description"`
	Images       []string `json:"images" validate:"dive,required"`
	Category     string   `json:"category" validate:"max=64"`
	FontEnabled  bool     `json:"fontEnabled"`
	StyleEnabled bool     `json:"styleEnabled"`
}

func (r ProductRequest) Product() Product {
	return Product{
		ID:           r.ID,
		Name:         r.Name,
		Price:        r.Price,
		Description:  r.Description,
		Images:       r.Images,
		Category:     r.Category,
		FontEnabled:  r.FontEnabled,
		StyleEnabled: r.StyleEnabled,
	}
}
