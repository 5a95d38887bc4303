package transport

import (
	"bytes"
	"encoding/json"

	"github.com/gldesigns/leather-shop/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  uint   `json:"userId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserInfo struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    UserInfo `json:"user"`
}

// CreateProductRequest carries the multipart form fields of a product
// creation. Price and stock arrive as strings and are validated by the
// service.
type CreateProductRequest struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	Price       string `form:"price"`
	Stock       string `form:"stock"`
	Category    string `form:"category"`
}

// UpdateProductRequest is the JSON body of a full update. ImageURL is kept
// raw so an omitted field (keep the current image) can be told apart from an
// explicit null or empty string (clear it).
type UpdateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.Number     `json:"price"`
	Stock       json.Number     `json:"stock"`
	ImageURL    json.RawMessage `json:"image_url"`
	Category    string          `json:"category"`
}

// ResolveImageURL returns the image reference the update should persist:
// the existing one when the field was omitted, nil when it was explicitly
// null or empty, the supplied string otherwise.
func (r UpdateProductRequest) ResolveImageURL(existing *string) (*string, error) {
	if len(r.ImageURL) == 0 {
		return existing, nil
	}
	if bytes.Equal(bytes.TrimSpace(r.ImageURL), []byte("null")) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(r.ImageURL, &s); err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

type ImageUpdateResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}

type SearchResponse struct {
	Total    int64            `json:"total"`
	Products []models.Product `json:"products"`
}
