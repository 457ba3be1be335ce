package repository

import (
	"go-pos-backend/internal/model"

	"gorm.io/gorm"
)

type TagRepository interface {
	Create(tx *gorm.DB, tag *model.ProductTag) error
	FindAll() ([]model.ProductTag, error)
	FindByID(id int64) (*model.ProductTag, error)
	FindByName(name string) (*model.ProductTag, error)
	FindAllByIDs(tx *gorm.DB, ids []int64) ([]model.ProductTag, error)
	Delete(tx *gorm.DB, id int64) error

	AddRelation(tx *gorm.DB, productID, tagID int64) error
	DeleteRelation(tx *gorm.DB, productID, tagID int64) error
	DeleteRelationsByProduct(tx *gorm.DB, productID int64) error
	DeleteRelationsByTag(tx *gorm.DB, tagID int64) error
	RelationCount(tx *gorm.DB, tagID int64) (int64, error)
	TagIDsByProduct(tx *gorm.DB, productID int64) ([]int64, error)
}

type tagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) TagRepository {
	return &tagRepo{db}
}

func (r *tagRepo) Create(tx *gorm.DB, tag *model.ProductTag) error {
	return tx.Create(tag).Error
}

func (r *tagRepo) FindAll() ([]model.ProductTag, error) {
	var tags []model.ProductTag
	err := r.db.Order("id ASC").Find(&tags).Error
	return tags, err
}

func (r *tagRepo) FindByID(id int64) (*model.ProductTag, error) {
	var tag model.ProductTag
	err := r.db.First(&tag, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepo) FindByName(name string) (*model.ProductTag, error) {
	var tag model.ProductTag
	err := r.db.First(&tag, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepo) FindAllByIDs(tx *gorm.DB, ids []int64) ([]model.ProductTag, error) {
	var tags []model.ProductTag
	err := tx.Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *tagRepo) Delete(tx *gorm.DB, id int64) error {
	return tx.Delete(&model.ProductTag{}, "id = ?", id).Error
}

func (r *tagRepo) AddRelation(tx *gorm.DB, productID, tagID int64) error {
	return tx.Create(&model.ProductTagRelation{ProductID: productID, ProductTagID: tagID}).Error
}

func (r *tagRepo) DeleteRelation(tx *gorm.DB, productID, tagID int64) error {
	return tx.Delete(&model.ProductTagRelation{}, "product_id = ? AND product_tag_id = ?", productID, tagID).Error
}

func (r *tagRepo) DeleteRelationsByProduct(tx *gorm.DB, productID int64) error {
	return tx.Delete(&model.ProductTagRelation{}, "product_id = ?", productID).Error
}

func (r *tagRepo) DeleteRelationsByTag(tx *gorm.DB, tagID int64) error {
	return tx.Delete(&model.ProductTagRelation{}, "product_tag_id = ?", tagID).Error
}

// RelationCount is the tag's live reference count, read inside the caller's
// transaction so GC decisions see the flow's own deletes.
func (r *tagRepo) RelationCount(tx *gorm.DB, tagID int64) (int64, error) {
	var count int64
	err := tx.Model(&model.ProductTagRelation{}).Where("product_tag_id = ?", tagID).Count(&count).Error
	return count, err
}

func (r *tagRepo) TagIDsByProduct(tx *gorm.DB, productID int64) ([]int64, error) {
	var ids []int64
	err := tx.Model(&model.ProductTagRelation{}).Where("product_id = ?", productID).Pluck("product_tag_id", &ids).Error
	return ids, err
}
