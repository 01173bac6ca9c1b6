package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fitwell/fitwell-api/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage describes order writes (transactional) and reads.
type OrderStorage interface {
	// CreateOrderTx inserts the pedido row inside tx and returns it with
	// the generated id, initial status and server-assigned timestamp.
	CreateOrderTx(ctx context.Context, tx *sql.Tx, userID int64, total float64) (*models.Order, error)
	// AddOrderItemTx records one (product, quantity) line of the order inside tx.
	AddOrderItemTx(ctx context.Context, tx *sql.Tx, orderID int64, item models.OrderItem) error
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, userID int64, total float64) (*models.Order, error) {
	order := &models.Order{UserID: userID, Total: total}
	err := tx.QueryRowContext(ctx,
		`INSERT INTO pedidos (usuario_id, total) VALUES ($1, $2) RETURNING id, estado, fecha`,
		userID, total,
	).Scan(&order.ID, &order.Status, &order.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) AddOrderItemTx(ctx context.Context, tx *sql.Tx, orderID int64, item models.OrderItem) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO pedido_items (pedido_id, producto_id, cantidad) VALUES ($1, $2, $3)`,
		orderID, item.ProductID, item.Quantity)
	if err != nil {
		return fmt.Errorf("failed to add order item: %w", err)
	}
	return nil
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, usuario_id, total, estado, fecha FROM pedidos WHERE usuario_id = $1 ORDER BY fecha DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.Total, &order.Status, &order.Date); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	row := r.db.QueryRowContext(ctx,
		`SELECT id, usuario_id, total, estado, fecha FROM pedidos WHERE id = $1`, id)
	if err := row.Scan(&order.ID, &order.UserID, &order.Total, &order.Status, &order.Date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT producto_id, cantidad FROM pedido_items WHERE pedido_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
