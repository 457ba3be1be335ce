package repository

import (
	"time"

	"go-pos-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(tx *gorm.DB, order *model.Order) error
	FindAll(status model.OrderStatus) ([]model.Order, error)
	FindPage(offset, limit int) ([]model.Order, error)
	FindByID(id int64) (*model.Order, error)
	FindByIDForUpdate(tx *gorm.DB, id int64) (*model.Order, error)
	Update(tx *gorm.DB, order *model.Order) error
	Delete(tx *gorm.DB, id int64) error

	GetOrderStats() (*OrderStats, error)
	GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error)
}

// SalesMovementData feeds the dashboard chart
type SalesMovementData struct {
	Date   string `json:"date"`
	Orders int64  `json:"orders"`
	Amount int64  `json:"amount"`
}

// OrderStats is the per-status overview for the progress board
type OrderStats struct {
	Pending          int64 `json:"pending"`
	Processing       int64 `json:"processing"`
	Completed        int64 `json:"completed"`
	Cancelled        int64 `json:"cancelled"`
	CompletedRevenue int64 `json:"completed_revenue"`
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

// Create inserts the order together with its items.
func (r *orderRepo) Create(tx *gorm.DB, order *model.Order) error {
	return tx.Create(order).Error
}

func (r *orderRepo) FindAll(status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	q := r.db.Preload("Items").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&orders).Error
	return orders, err
}

// FindPage returns orders by ascending primary key for the CSV exporter.
// Callers pass limit = pageSize+1 to detect whether another page exists.
func (r *orderRepo) FindPage(offset, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id ASC")
	}).Order("id ASC").Offset(offset).Limit(limit).Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByID(id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate locks the order row so concurrent edits serialize. The
// preloaded items are read without a lock; they are never mutated in place.
func (r *orderRepo) FindByIDForUpdate(tx *gorm.DB, id int64) (*model.Order, error) {
	var order model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) Update(tx *gorm.DB, order *model.Order) error {
	return tx.Omit("Items").Save(order).Error
}

func (r *orderRepo) Delete(tx *gorm.DB, id int64) error {
	if err := tx.Delete(&model.OrderItem{}, "order_id = ?", id).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Order{}, "id = ?", id).Error
}

func (r *orderRepo) GetOrderStats() (*OrderStats, error) {
	var stats OrderStats

	type row struct {
		Status model.OrderStatus
		N      int64
	}
	var rows []row
	err := r.db.Model(&model.Order{}).
		Select("status, COUNT(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		switch rw.Status {
		case model.OrderPending:
			stats.Pending = rw.N
		case model.OrderProcessing:
			stats.Processing = rw.N
		case model.OrderCompleted:
			stats.Completed = rw.N
		case model.OrderCancelled:
			stats.Cancelled = rw.N
		}
	}

	err = r.db.Model(&model.Order{}).
		Where("status = ?", model.OrderCompleted).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.CompletedRevenue).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *orderRepo) GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error) {
	var results []SalesMovementData

	rows, err := r.db.Model(&model.Order{}).
		Select(`
			DATE(created_at) as date,
			COUNT(*) as orders,
			COALESCE(SUM(total_amount), 0) as amount
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Where("status <> ?", model.OrderCancelled).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data SalesMovementData
		if err := rows.Scan(&data.Date, &data.Orders, &data.Amount); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}
