package models

import "time"

// Order statuses stored in pedidos.estado.
const (
	OrderPending    = "pendiente"
	OrderProcessing = "procesando"
	OrderShipped    = "enviado"
	OrderCompleted  = "completado"
	OrderCancelled  = "cancelado"
)

// Order is a checkout event: who ordered, for how much, and when.
type Order struct {
	ID     int64     `json:"id"`
	UserID int64     `json:"usuario_id"`
	Total  float64   `json:"total"`
	Status string    `json:"estado"`
	Date   time.Time `json:"fecha"`
}

// OrderItem is one (product, quantity) pair of an order, persisted in
// pedido_items within the same transaction as the order row.
type OrderItem struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"cantidad"`
}
