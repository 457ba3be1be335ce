package repository

import (
	"go-pos-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterRepository maintains the denormalized aggregate counters. All
// adjustments are single atomic SQL expressions executed inside the caller's
// transaction, so the counter can never drift from the rows it mirrors and
// never goes below zero.
type CounterRepository interface {
	IncrementStore(tx *gorm.DB, name string) error
	DecrementStore(tx *gorm.DB, name string) error
	GetStore(name string) (int64, error)

	IncrementTag(tx *gorm.DB, tagID int64) error
	DecrementTag(tx *gorm.DB, tagID int64) error
	GetTagCount(tx *gorm.DB, tagID int64) (int64, error)
	GetAllTagCounts() (map[int64]int64, error)
	DeleteTagCounter(tx *gorm.DB, tagID int64) error
}

type counterRepo struct {
	db *gorm.DB
}

func NewCounterRepo(db *gorm.DB) CounterRepository {
	return &counterRepo{db}
}

func (r *counterRepo) IncrementStore(tx *gorm.DB, name string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("store_counters.count + 1")}),
	}).Create(&model.StoreCounter{Name: name, Count: 1}).Error
}

func (r *counterRepo) DecrementStore(tx *gorm.DB, name string) error {
	return tx.Model(&model.StoreCounter{}).
		Where("name = ?", name).
		Update("count", gorm.Expr("GREATEST(count - 1, 0)")).Error
}

func (r *counterRepo) GetStore(name string) (int64, error) {
	var counter model.StoreCounter
	err := r.db.First(&counter, "name = ?", name).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.Count, nil
}

func (r *counterRepo) IncrementTag(tx *gorm.DB, tagID int64) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tag_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("product_count_per_product_tag.count + 1")}),
	}).Create(&model.TagProductCount{TagID: tagID, Count: 1}).Error
}

func (r *counterRepo) DecrementTag(tx *gorm.DB, tagID int64) error {
	return tx.Model(&model.TagProductCount{}).
		Where("tag_id = ?", tagID).
		Update("count", gorm.Expr("GREATEST(count - 1, 0)")).Error
}

func (r *counterRepo) GetTagCount(tx *gorm.DB, tagID int64) (int64, error) {
	var counter model.TagProductCount
	err := tx.First(&counter, "tag_id = ?", tagID).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.Count, nil
}

func (r *counterRepo) GetAllTagCounts() (map[int64]int64, error) {
	var counters []model.TagProductCount
	if err := r.db.Find(&counters).Error; err != nil {
		return nil, err
	}
	counts := make(map[int64]int64, len(counters))
	for _, c := range counters {
		counts[c.TagID] = c.Count
	}
	return counts, nil
}

func (r *counterRepo) DeleteTagCounter(tx *gorm.DB, tagID int64) error {
	return tx.Delete(&model.TagProductCount{}, "tag_id = ?", tagID).Error
}
