package service

import (
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
)

// DashboardStats is the overview block on the staff dashboard. Product and
// tag counts come from the denormalized store counters, not COUNT(*) scans.
type DashboardStats struct {
	ProductCount    int64                  `json:"product_count"`
	ProductTagCount int64                  `json:"product_tag_count"`
	Orders          *repository.OrderStats `json:"orders"`
}

type DashboardService interface {
	GetDashboardStats() (*DashboardStats, error)
	GetSalesMovement(days int) ([]repository.SalesMovementData, error)
}

type dashboardService struct {
	orderRepo   repository.OrderRepository
	counterRepo repository.CounterRepository
}

func NewDashboardService(orderRepo repository.OrderRepository, counterRepo repository.CounterRepository) DashboardService {
	return &dashboardService{orderRepo: orderRepo, counterRepo: counterRepo}
}

func (s *dashboardService) GetDashboardStats() (*DashboardStats, error) {
	productCount, err := s.counterRepo.GetStore(model.CounterProducts)
	if err != nil {
		return nil, err
	}
	tagCount, err := s.counterRepo.GetStore(model.CounterProductTags)
	if err != nil {
		return nil, err
	}
	orderStats, err := s.orderRepo.GetOrderStats()
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		ProductCount:    productCount,
		ProductTagCount: tagCount,
		Orders:          orderStats,
	}, nil
}

func (s *dashboardService) GetSalesMovement(days int) ([]repository.SalesMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.orderRepo.GetSalesMovement(startDate, endDate)
}
