package dto

import "time"

// RouteStopRequest cliente a incluir en la ruta con su posición.
type RouteStopRequest struct {
	ClientID   string `json:"client_id" validate:"required"`
	OrderIndex int    `json:"order_index" validate:"min=0"`
}

// CreateRouteRequest ruta nueva con paradas opcionales.
type CreateRouteRequest struct {
	Name        string             `json:"name" validate:"required,min=1,max=100"`
	Description string             `json:"description" validate:"max=500"`
	Type        string             `json:"type" validate:"required,oneof=sales delivery"`
	Clients     []RouteStopRequest `json:"clients" validate:"dive"`
}

// UpdateRouteRequest campos opcionales; nil = sin cambio.
type UpdateRouteRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Type        *string `json:"type" validate:"omitempty,oneof=sales delivery"`
	Active      *bool   `json:"active"`
}

// AssignRouteRequest asignación de ruta a un usuario. Date vacío = hoy.
type AssignRouteRequest struct {
	Date string `json:"date" query:"date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateAssignmentRequest cambio de estado de una asignación.
type UpdateAssignmentRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled completed cancelled"`
}

// RouteStopResponse parada con los datos básicos del cliente.
type RouteStopResponse struct {
	ClientID   string   `json:"client_id"`
	ClientName string   `json:"client_name"`
	Address    string   `json:"address"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	OrderIndex int      `json:"order_index"`
}

// AssignmentResponse salida de una asignación.
type AssignmentResponse struct {
	ID      string `json:"id"`
	RouteID string `json:"route_id"`
	UserID  string `json:"user_id"`
	Date    string `json:"date"` // YYYY-MM-DD
	Status  string `json:"status"`
}

// RouteResponse ruta con paradas y asignaciones.
type RouteResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Type        string               `json:"type"`
	CreatedBy   string               `json:"created_by"`
	Active      bool                 `json:"active"`
	Clients     []RouteStopResponse  `json:"clients"`
	Assignments []AssignmentResponse `json:"assignments"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}
