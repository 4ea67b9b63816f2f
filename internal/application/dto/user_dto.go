package dto

import "time"

// RegisterRequest auto-registro: username, email y contraseña.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse token de acceso emitido.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // segundos
}

// LoginResponse token + usuario autenticado.
type LoginResponse struct {
	TokenResponse
	User UserResponse `json:"user"`
}

// UpdateMeRequest cambios que el propio usuario puede hacer sobre su cuenta.
type UpdateMeRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email,max=100"`
	Password *string `json:"password"`
}

// ChangeRoleRequest asignación de rol por un administrador.
type ChangeRoleRequest struct {
	RoleID string `json:"role_id" validate:"required,uuid"`
}

// UserResponse salida de un usuario (sin contraseña).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	RoleID    string    `json:"role_id,omitempty"`
	RoleName  string    `json:"role_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserWithPermissionsResponse usuario con su rol y permisos efectivos.
type UserWithPermissionsResponse struct {
	UserResponse
	Permissions []string `json:"permissions"`
}

// UserListResponse listado paginado de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
