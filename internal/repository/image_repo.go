package repository

import (
	"go-pos-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ImageRepository interface {
	FindByProductID(productID int64) (*model.ProductImage, error)
	Upsert(tx *gorm.DB, image *model.ProductImage) error
	DeleteByProductID(tx *gorm.DB, productID int64) error
}

type imageRepo struct {
	db *gorm.DB
}

func NewImageRepo(db *gorm.DB) ImageRepository {
	return &imageRepo{db}
}

func (r *imageRepo) FindByProductID(productID int64) (*model.ProductImage, error) {
	var image model.ProductImage
	err := r.db.First(&image, "product_id = ?", productID).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// Upsert replaces the product's image in place; products carry at most one.
func (r *imageRepo) Upsert(tx *gorm.DB, image *model.ProductImage) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "mime_type", "updated_at"}),
	}).Create(image).Error
}

func (r *imageRepo) DeleteByProductID(tx *gorm.DB, productID int64) error {
	return tx.Delete(&model.ProductImage{}, "product_id = ?", productID).Error
}
