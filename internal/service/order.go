package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fitwell/fitwell-api/internal/domain/models"
	"github.com/fitwell/fitwell-api/internal/storage"
)

// InsufficientStockError identifies the line item that made the order
// impossible. The whole order is rejected; there is no partial
// fulfillment.
type InsufficientStockError struct {
	ProductID int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

// OrderService places orders and reads order history.
type OrderService interface {
	// PlaceOrder atomically creates the order row and decrements stock
	// for every line item. Either everything commits or nothing does.
	PlaceOrder(ctx context.Context, userID int64, total float64, items []models.OrderItem) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	GetOrderDetail(ctx context.Context, orderID int64) (*models.Order, []models.OrderItem, error)
}

type orderService struct {
	log         *slog.Logger
	db          *sql.DB
	orderRepo   storage.OrderStorage
	productRepo storage.ProductStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage, productRepo storage.ProductStorage) OrderService {
	return &orderService{
		log:         log,
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// PlaceOrder runs the checkout transaction. The stock decrement is a
// conditional update, so two concurrent orders can never drive stock
// below zero; the loser of the race gets InsufficientStockError.
func (s *orderService) PlaceOrder(ctx context.Context, userID int64, total float64, items []models.OrderItem) (*models.Order, error) {
	const op = "service.OrderService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Float64("total", total))
	logger.Info("starting order transaction", slog.Int("items", len(items)))

	if len(items) == 0 {
		return nil, fmt.Errorf("%s: order must contain at least one item", op)
	}
	if total < 0 {
		return nil, fmt.Errorf("%s: total must not be negative", op)
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%s: quantity must be positive for product %d", op, item.ProductID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	order, err := s.orderRepo.CreateOrderTx(ctx, tx, userID, total)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	for _, item := range items {
		if err := s.productRepo.DecrementStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			if errors.Is(err, storage.ErrInsufficientStock) {
				logger.Warn("insufficient stock", slog.Int64("productID", item.ProductID), slog.Int("quantity", item.Quantity))
				return nil, &InsufficientStockError{ProductID: item.ProductID}
			}
			logger.Error("failed to decrement stock", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to decrement stock: %w", op, err)
		}

		if err := s.orderRepo.AddOrderItemTx(ctx, tx, order.ID, item); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to add order item", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to add order item: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order placed successfully", slog.Int64("orderID", order.ID))
	return order, nil
}

func (s *orderService) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.GetOrdersByUserID"
	s.log.Info("getting orders", slog.String("op", op), slog.Int64("userID", userID))

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) GetOrderDetail(ctx context.Context, orderID int64) (*models.Order, []models.OrderItem, error) {
	const op = "service.OrderService.GetOrderDetail"
	s.log.Info("getting order detail", slog.String("op", op), slog.Int64("orderID", orderID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}
	items, err := s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to get order items: %w", op, err)
	}
	return order, items, nil
}
