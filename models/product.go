package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Catalog kinds. Each kind is served by its own route table.
const (
	ProductKindCasual = "casual"
	ProductKindDTF    = "dtf"
)

// Upload ceilings per entity.
const (
	MaxProductImages  = 12
	MaxTemplateImages = 1
)

// Image is a hosted image and the storage id needed to delete it.
type Image struct {
	URL      string `json:"url" dynamodbav:"url"`
	PublicID string `json:"publicId" dynamodbav:"public_id"`
}

// Product is a catalog entry. Casual garments and DTF transfers share a table;
// fields that only make sense for one kind are left zero for the other.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Kind        string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_products_kind_slug" json:"kind"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_products_kind_slug" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	Images      []Image   `gorm:"serializer:json;type:jsonb" json:"images"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`

	// casual
	CompareAtPrice *float64       `json:"compareAtPrice,omitempty"`
	Category       string         `gorm:"type:varchar(128);index" json:"category,omitempty"`
	Sizes          datatypes.JSON `gorm:"type:jsonb" json:"sizes,omitempty"`
	Colors         datatypes.JSON `gorm:"type:jsonb" json:"colors,omitempty"`

	// dtf
	MinQuantity  int            `gorm:"not null;default:0" json:"minQuantity,omitempty"`
	PrintSizes   datatypes.JSON `gorm:"type:jsonb" json:"printSizes,omitempty"`
	TransferType string         `gorm:"type:varchar(64)" json:"transferType,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ProductFilter narrows a catalog listing.
type ProductFilter struct {
	Search   string
	Category string
	Active   *bool
	Page     int
	Limit    int
}

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}
