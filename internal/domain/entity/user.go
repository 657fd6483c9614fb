package entity

import "time"

// User credenciales de un usuario del proveedor de autenticación local.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano
	CreatedAt    time.Time
}

// Identity sujeto autenticado de la sesión actual. Determina qué productos se ven y se editan.
// Solo el Session Manager la crea o la descarta.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"-"` // token opaco de sesión emitido por el proveedor
}

// Same compara por id; nil solo es igual a nil.
func (i *Identity) Same(other *Identity) bool {
	if i == nil || other == nil {
		return i == nil && other == nil
	}
	return i.ID == other.ID
}
