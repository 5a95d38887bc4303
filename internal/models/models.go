package models

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:client"  json:"role"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null"                 json:"name"`
	Description *string `json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	Stock       uint    `gorm:"default:0"                json:"stock"`
	ImageURL    *string `json:"image_url"`
	Category    string  `json:"category"`
}
