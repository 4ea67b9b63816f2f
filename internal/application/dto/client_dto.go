package dto

import "time"

// CreateClientRequest alta de cliente.
type CreateClientRequest struct {
	Name      string   `json:"name" validate:"required,min=1,max=100"`
	NIT       string   `json:"nit" validate:"required,min=1,max=20"`
	Address   string   `json:"address" validate:"max=200"`
	Phone     string   `json:"phone" validate:"max=20"`
	Contact   string   `json:"contact" validate:"max=100"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// UpdateClientRequest campos opcionales; nil = sin cambio.
type UpdateClientRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=1,max=100"`
	NIT       *string  `json:"nit" validate:"omitempty,min=1,max=20"`
	Address   *string  `json:"address" validate:"omitempty,max=200"`
	Phone     *string  `json:"phone" validate:"omitempty,max=20"`
	Contact   *string  `json:"contact" validate:"omitempty,max=100"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	Active    *bool    `json:"active"`
}

// ClientResponse salida de un cliente.
type ClientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NIT       string    `json:"nit"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Contact   string    `json:"contact"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientListResponse listado paginado de clientes.
type ClientListResponse struct {
	Items []ClientResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
