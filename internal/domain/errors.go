package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrInactiveUser      = errors.New("usuario inactivo")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrProductNotFound   = errors.New("producto no encontrado")
)

// ValidationError entrada inválida con el campo afectado. Es ErrInvalidInput para errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid atajo para construir un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StockError indica qué producto impidió el pedido.
// Envuelve ErrInsufficientStock o ErrProductNotFound según el caso.
type StockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
	kind        error
}

// NewInsufficientStock error de stock para el producto indicado.
func NewInsufficientStock(productID string, requested, available int) *StockError {
	return &StockError{ProductID: productID, Requested: requested, Available: available, kind: ErrInsufficientStock}
}

// NewProductNotFound el producto de una línea no existe.
func NewProductNotFound(productID string) *StockError {
	return &StockError{ProductID: productID, kind: ErrProductNotFound}
}

// WithName nombre del producto para el mensaje; vacío conserva el ID.
func (e *StockError) WithName(name string) *StockError {
	e.ProductName = name
	return e
}

func (e *StockError) Error() string {
	if e.kind == ErrProductNotFound {
		return fmt.Sprintf("producto %s no encontrado", e.ProductID)
	}
	product := e.ProductID
	if e.ProductName != "" {
		product = e.ProductName
	}
	return fmt.Sprintf("stock insuficiente para el producto %s (solicitado %d, disponible %d)",
		product, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return e.kind }

// PermissionError la capacidad que faltó en el guard. Es ErrForbidden para errors.Is.
type PermissionError struct {
	Permission string
	Role       string
}

func (e *PermissionError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("se requiere el rol '%s'", e.Role)
	}
	return fmt.Sprintf("se requiere el permiso '%s'", e.Permission)
}

func (e *PermissionError) Unwrap() error { return ErrForbidden }
