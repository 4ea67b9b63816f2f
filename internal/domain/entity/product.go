package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product artículo del catálogo. Stock es un entero no negativo; Active=false es el borrado lógico.
type Product struct {
	ID          string
	Name        string
	SKU         string // único
	Description string
	Price       decimal.Decimal
	Stock       int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
