package models

import "time"

// Product is a catalog item. Image holds the stored file name; the
// transport layer turns it into an absolute URL.
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nombre"`
	Description  *string   `json:"descripcion"`
	Price        float64   `json:"precio"`
	Stock        int       `json:"stock"`
	CategoryID   int64     `json:"categoria_id"`
	CategoryName string    `json:"categoria_nombre"` // filled via JOIN with categorias
	Image        *string   `json:"imagen"`
	Featured     bool      `json:"destacado"`
	CreatedAt    time.Time `json:"-"`
}

// Category is one of the fixed product classifications seeded by the
// migrations (Equipamiento, Ropa, Suplementos).
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}
