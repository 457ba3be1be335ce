package model

import "time"

// Catalog limits, mirrored by DB check constraints as defense-in-depth.
const (
	ProductNameMaxLen   = 50
	PriceMax            = 1_000_000_000
	StockMax            = 1_000_000_000
	MaxTagsPerProduct   = 20
	MaxProductsPerStore = 1000
	TagNameMaxLen       = 50
)

type Product struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null;check:chk_product_name,length(name) BETWEEN 1 AND 50" json:"name"`
	Price     int64     `gorm:"not null;check:chk_product_price,price >= 0 AND price <= 1000000000" json:"price"`
	Stock     int64     `gorm:"not null;check:chk_product_stock,stock >= 0 AND stock <= 1000000000" json:"stock"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`

	Tags  []ProductTag  `gorm:"many2many:product_tag_relations;" json:"tags"`
	Image *ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// ProductTag is a named category attachable to products. A tag is garbage
// collected when the last product referencing it is updated away or deleted.
type ProductTag struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null;check:chk_tag_name,length(name) BETWEEN 1 AND 50" json:"name"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ProductTag) TableName() string {
	return "product_tags"
}

// ProductTagRelation is the explicit join row between products and tags.
// Declared as a model so reference counts can be queried directly.
type ProductTagRelation struct {
	ProductID    int64 `gorm:"primaryKey" json:"product_id"`
	ProductTagID int64 `gorm:"primaryKey" json:"product_tag_id"`
}

func (ProductTagRelation) TableName() string {
	return "product_tag_relations"
}

// Allowed product image mime types.
var AllowedImageMimeTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// ImageDataMaxLen caps the base64 payload at 7.5 MiB of base64 characters.
const ImageDataMaxLen = 7.5 * 1024 * 1024

type ProductImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"uniqueIndex;not null" json:"product_id"`
	Data      string    `gorm:"type:text;not null" json:"data"` // base64, no data: prefix
	MimeType  string    `gorm:"type:varchar(20);not null" json:"mime_type"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ProductImage) TableName() string {
	return "product_images"
}

func IsAllowedImageMimeType(mime string) bool {
	for _, m := range AllowedImageMimeTypes {
		if m == mime {
			return true
		}
	}
	return false
}

// TagIDs returns the ids of the tags currently attached to the product.
func (p *Product) TagIDs() []int64 {
	ids := make([]int64, len(p.Tags))
	for i, t := range p.Tags {
		ids[i] = t.ID
	}
	return ids
}
