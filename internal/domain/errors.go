package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("el recurso pertenece a otro usuario")
	ErrAlreadyStarted     = errors.New("ya iniciado")
)

// AuthError falla al registrar el listener de sesión en el proveedor. Es fatal al arrancar.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: registrar listener de sesión: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// SubscriptionError falla reportada por la suscripción en vivo de productos.
// Se registra en el log y se expone; el conjunto de productos conserva su último valor.
type SubscriptionError struct {
	OwnerID string
	Err     error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("suscripción de productos (owner %s): %v", e.OwnerID, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

// WriteOp operación de escritura contra el store remoto.
type WriteOp string

const (
	WriteCreate WriteOp = "create"
	WriteUpdate WriteOp = "update"
	WriteDelete WriteOp = "delete"
)

// WriteError falla de create/update/delete. Siempre debe llegar al usuario; no hay reintento.
type WriteError struct {
	Op        WriteOp
	ProductID string
	Err       error
}

func (e *WriteError) Error() string {
	if e.ProductID == "" {
		return fmt.Sprintf("%s producto: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s producto %s: %v", e.Op, e.ProductID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// UserMessage mensaje visible para el usuario según la operación.
func (e *WriteError) UserMessage() string {
	switch e.Op {
	case WriteCreate:
		return "Error al agregar el producto"
	case WriteUpdate:
		return "Error al actualizar el producto"
	case WriteDelete:
		return "Error al eliminar el producto"
	default:
		return "Error al guardar el producto"
	}
}

// ValidationErrors errores de formulario por campo (clave = nombre del campo).
// Se resuelven localmente y nunca llegan al gateway de escrituras.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validación: " + strings.Join(parts, "; ")
}

// Is permite errors.Is(err, ErrInvalidInput).
func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}
