package entity

import "time"

// Tipos de ruta.
const (
	RouteTypeSales    = "sales"
	RouteTypeDelivery = "delivery"
)

// Estados de una asignación de ruta.
const (
	AssignmentScheduled = "scheduled"
	AssignmentCompleted = "completed"
	AssignmentCancelled = "cancelled"
)

// ValidRouteType tipo de ruta conocido.
func ValidRouteType(t string) bool {
	return t == RouteTypeSales || t == RouteTypeDelivery
}

// ValidAssignmentStatus estado de asignación conocido.
func ValidAssignmentStatus(s string) bool {
	switch s {
	case AssignmentScheduled, AssignmentCompleted, AssignmentCancelled:
		return true
	}
	return false
}

// Route recorrido nombrado de visitas a clientes.
type Route struct {
	ID          string
	Name        string
	Description string
	Type        string
	CreatedBy   string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RouteClient parada de una ruta. Client se carga en las consultas de detalle.
type RouteClient struct {
	ID         string
	RouteID    string
	ClientID   string
	OrderIndex int
	Client     *Client
}

// RouteAssignment asignación de una ruta a un usuario para una fecha.
type RouteAssignment struct {
	ID        string
	RouteID   string
	UserID    string
	Date      time.Time
	Status    string
	CreatedAt time.Time
}
