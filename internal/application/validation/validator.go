// Package validation valida los formularios de entrada con go-playground/validator y traduce
// las fallas a mensajes por campo para la UI.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/Inventario-sync/internal/application/dto"
	"github.com/jhoicas/Inventario-sync/internal/domain"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
)

// messages mensajes por campo (nombre json) y regla.
var messages = map[string]map[string]string{
	"name":     {"notblank": "El nombre es requerido"},
	"code":     {"notblank": "El código es requerido"},
	"category": {"notblank": "La categoría es requerida", "category": "La categoría no es válida"},
	"price":    {"required": "El precio debe ser mayor a 0", "gt": "El precio debe ser mayor a 0"},
	"stock":    {"required": "El stock debe ser 0 o mayor", "gte": "El stock debe ser 0 o mayor"},
	"email":    {"required": "El email es requerido", "email": "El email no es válido"},
	"password": {"required": "La contraseña es requerida", "min": "La contraseña debe tener al menos 6 caracteres"},
}

// Validator valida requests de la API. Es seguro para uso concurrente.
type Validator struct {
	v          *validator.Validate
	list       []string
	categories map[string]struct{}
}

// New construye el validador con las categorías aceptadas por el formulario.
// Sin categorías usa entity.DefaultCategories.
func New(categories []string) *Validator {
	if len(categories) == 0 {
		categories = entity.DefaultCategories
	}
	val := &Validator{
		v:          validator.New(validator.WithRequiredStructEnabled()),
		list:       append([]string(nil), categories...),
		categories: make(map[string]struct{}, len(categories)),
	}
	for _, c := range categories {
		val.categories[c] = struct{}{}
	}

	val.v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = val.v.RegisterValidation("notblank", notBlank)
	_ = val.v.RegisterValidation("category", val.knownCategory)
	return val
}

// Categories categorías aceptadas en el orden configurado.
func (val *Validator) Categories() []string {
	return append([]string(nil), val.list...)
}

// Product valida el formulario de producto y devuelve los campos listos para el gateway.
// Las fallas son domain.ValidationErrors.
func (val *Validator) Product(req dto.ProductRequest) (entity.ProductFields, error) {
	if err := val.Struct(req); err != nil {
		return entity.ProductFields{}, err
	}
	return req.Fields(), nil
}

// Struct valida cualquier request con tags `validate`.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	out := make(domain.ValidationErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return out
}

func message(field, tag string) string {
	if m, ok := messages[field][tag]; ok {
		return m
	}
	return fmt.Sprintf("El campo %s no es válido", field)
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func (val *Validator) knownCategory(fl validator.FieldLevel) bool {
	_, ok := val.categories[fl.Field().String()]
	return ok
}
