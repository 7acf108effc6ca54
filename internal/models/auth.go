package models

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterRequest is the request body for POST /auth/register.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
}

// AuthResponse is returned by the login, register, and refresh endpoints.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
