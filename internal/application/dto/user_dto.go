package dto

// RegisterRequest entrada para registro: email y password.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse identidad de la sesión (sin token).
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginResponse token de sesión emitido por el proveedor.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
