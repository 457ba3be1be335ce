package repository

import (
	"go-pos-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll() ([]model.Product, error)
	FindPage(offset, limit int) ([]model.Product, error)
	FindByID(id int64) (*model.Product, error)
	FindByName(name string) (*model.Product, error)
	FindAllByIDsForUpdate(tx *gorm.DB, ids []int64) ([]model.Product, error)
	FindByIDForUpdate(tx *gorm.DB, id int64) (*model.Product, error)
	Count(tx *gorm.DB) (int64, error)
	Update(tx *gorm.DB, product *model.Product) error
	UpdateStock(tx *gorm.DB, id int64, newStock int64, updatedBy string) error
	Delete(tx *gorm.DB, id int64) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// Create inserts the product row only; tag relations are managed explicitly
// through TagRepository so reference counters stay in step.
func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Omit("Tags").Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Tags").Order("id ASC").Find(&products).Error
	return products, err
}

// FindPage returns products ordered by primary key for the CSV exporter.
// Callers pass limit = pageSize+1 to detect whether another page exists.
func (r *productRepo) FindPage(offset, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Tags").Order("id ASC").Offset(offset).Limit(limit).Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Tags").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByName(name string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindAllByIDsForUpdate batch-loads products and takes row locks so
// concurrent order placements cannot oversell the same stock.
func (r *productRepo) FindAllByIDsForUpdate(tx *gorm.DB, ids []int64) ([]model.Product, error) {
	var products []model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepo) FindByIDForUpdate(tx *gorm.DB, id int64) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Count(tx *gorm.DB) (int64, error) {
	var count int64
	err := tx.Model(&model.Product{}).Count(&count).Error
	return count, err
}

func (r *productRepo) Update(tx *gorm.DB, product *model.Product) error {
	return tx.Omit("Tags").Save(product).Error
}

// UpdateStock runs inside the caller's transaction
func (r *productRepo) UpdateStock(tx *gorm.DB, id int64, newStock int64, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":              newStock,
			"updated_by_user_id": updatedBy,
		}).Error
}

func (r *productRepo) Delete(tx *gorm.DB, id int64) error {
	return tx.Delete(&model.Product{}, "id = ?", id).Error
}
