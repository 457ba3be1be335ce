package service

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/ws"

	"gorm.io/gorm"
)

// OrderItemInput is one requested line: which product and how many.
// Duplicate product ids are kept as separate lines, never merged.
// Limits are enforced in the service so violations map to the
// whitelisted domain errors.
type OrderItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type RegisterOrderInput struct {
	CustomerName *string          `json:"customer_name"`
	Comment      *string          `json:"comment"`
	Items        []OrderItemInput `json:"items"`
}

// UpdateOrderInput carries optional changes; nil fields are left untouched.
// An empty customer name or comment clears the stored value.
type UpdateOrderInput struct {
	Status       *string `json:"status"`
	CustomerName *string `json:"customer_name"`
	Comment      *string `json:"comment"`
}

type OrderService interface {
	RegisterOrder(input *RegisterOrderInput, userID, userName string) (*model.Order, error)
	UpdateOrder(id int64, input *UpdateOrderInput, userID, userName string) (*model.Order, error)
	DeleteOrder(id int64, userID, userName string) error
	GetAllOrders(status model.OrderStatus) ([]model.Order, error)
	GetOrderByID(id int64) (*model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewOrderService(oRepo repository.OrderRepository, pRepo repository.ProductRepository, db *gorm.DB, hub *ws.Hub) OrderService {
	return &orderService{
		orderRepo:   oRepo,
		productRepo: pRepo,
		db:          db,
		wsHub:       hub,
	}
}

func validateOrderFields(customerName, comment *string) error {
	if customerName != nil && utf8.RuneCountInString(*customerName) > model.CustomerNameMaxLen {
		return ErrCustomerNameTooLong
	}
	if comment != nil && utf8.RuneCountInString(*comment) > model.CommentMaxLen {
		return ErrCommentTooLong
	}
	return nil
}

// RegisterOrder places an order atomically: it locks and batch-loads the
// referenced products, checks every line against current stock, decrements
// stock per product, computes the total from the snapshotted prices and
// inserts the order with its items. Any failure rolls the whole thing back.
func (s *orderService) RegisterOrder(input *RegisterOrderInput, userID, userName string) (*model.Order, error) {
	if len(input.Items) < 1 || len(input.Items) > model.MaxOrderItems {
		return nil, ErrOrderItemCount
	}
	if err := validateOrderFields(input.CustomerName, input.Comment); err != nil {
		return nil, err
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, ErrQuantityTooSmall
		}
	}

	var order *model.Order
	stockAfter := make(map[int64]int64)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ids := make([]int64, 0, len(input.Items))
		for _, item := range input.Items {
			ids = append(ids, item.ProductID)
		}

		// Single batched load with row locks; concurrent placements against
		// the same products serialize here instead of overselling.
		products, err := s.productRepo.FindAllByIDsForUpdate(tx, ids)
		if err != nil {
			return err
		}
		byID := make(map[int64]*model.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		items := make([]model.OrderItem, 0, len(input.Items))
		var total int64
		touched := make(map[int64]bool)

		for _, item := range input.Items {
			product, ok := byID[item.ProductID]
			if !ok {
				return ErrOrderUnknownProduct
			}
			newStock := product.Stock - item.Quantity
			if newStock < 0 {
				return ErrInsufficientStock
			}
			// Duplicate lines for the same product decrement cumulatively.
			product.Stock = newStock
			touched[product.ID] = true

			productID := product.ID
			items = append(items, model.OrderItem{
				ProductID:   &productID,
				ProductName: product.Name,
				UnitAmount:  product.Price,
				Quantity:    item.Quantity,
			})
			total += product.Price * item.Quantity
		}

		for id := range touched {
			if err := s.productRepo.UpdateStock(tx, id, byID[id].Stock, userID); err != nil {
				return err
			}
			stockAfter[id] = byID[id].Stock
		}

		order = &model.Order{
			CustomerName:    input.CustomerName,
			Comment:         input.Comment,
			Status:          model.OrderPending,
			TotalAmount:     total,
			Items:           items,
			CreatedByUserID: &userID,
			UpdatedByUserID: &userID,
		}
		return s.orderRepo.Create(tx, order)
	})

	if err != nil {
		return nil, err
	}

	go s.wsHub.Publish(ws.Event{
		Type:    ws.EventOrderCreated,
		Payload: order,
		Actor:   userName,
		Message: fmt.Sprintf("%s placed order #%d", userName, order.ID),
	})
	go s.wsHub.Publish(ws.Event{
		Type:    ws.EventStockChanged,
		Payload: stockAfter,
		Actor:   userName,
		Message: fmt.Sprintf("stock updated by order #%d", order.ID),
	})

	return order, nil
}

// UpdateOrder applies status and detail edits. Any of the four statuses may be
// set from any other; staff correct mistakes by moving orders backwards too.
func (s *orderService) UpdateOrder(id int64, input *UpdateOrderInput, userID, userName string) (*model.Order, error) {
	if input.Status != nil && !model.OrderStatus(*input.Status).Valid() {
		return nil, ErrInvalidOrderStatus
	}
	if err := validateOrderFields(input.CustomerName, input.Comment); err != nil {
		return nil, err
	}

	var updated *model.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if input.Status != nil {
			order.Status = model.OrderStatus(*input.Status)
		}
		if input.CustomerName != nil {
			if *input.CustomerName == "" {
				order.CustomerName = nil
			} else {
				order.CustomerName = input.CustomerName
			}
		}
		if input.Comment != nil {
			if *input.Comment == "" {
				order.Comment = nil
			} else {
				order.Comment = input.Comment
			}
		}
		order.UpdatedByUserID = &userID

		if err := s.orderRepo.Update(tx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})

	if err != nil {
		return nil, err
	}

	go s.wsHub.Publish(ws.Event{
		Type:    ws.EventOrderUpdated,
		Payload: updated,
		Actor:   userName,
		Message: fmt.Sprintf("%s moved order #%d to %s", userName, updated.ID, updated.Status),
	})

	return updated, nil
}

// DeleteOrder is the explicit admin delete; orders never disappear in the
// normal flow.
func (s *orderService) DeleteOrder(id int64, userID, userName string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.orderRepo.FindByIDForUpdate(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		return s.orderRepo.Delete(tx, id)
	})
	if err != nil {
		return err
	}

	go s.wsHub.Publish(ws.Event{
		Type:    ws.EventOrderDeleted,
		Payload: map[string]interface{}{"id": id},
		Actor:   userName,
		Message: fmt.Sprintf("%s deleted order #%d", userName, id),
	})

	return nil
}

func (s *orderService) GetAllOrders(status model.OrderStatus) ([]model.Order, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidOrderStatus
	}
	return s.orderRepo.FindAll(status)
}

func (s *orderService) GetOrderByID(id int64) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}
