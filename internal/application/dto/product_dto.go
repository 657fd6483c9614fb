package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/pkg/currency"
)

// Guarani monto entero en guaraníes. Acepta número JSON o texto formateado ("₲ 80.000").
type Guarani int64

// UnmarshalJSON admite 80000, "80000" y "₲ 80.000".
func (g *Guarani) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*g = Guarani(currency.ParseGuarani(s))
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("monto inválido %s: %w", b, err)
	}
	*g = Guarani(n)
	return nil
}

// ProductRequest entrada del formulario de producto (alta y edición; la edición reemplaza todo).
// Price y Stock son punteros para distinguir "ausente" de 0.
type ProductRequest struct {
	Name     string   `json:"name" validate:"notblank"`
	Code     string   `json:"code" validate:"notblank"`
	Category string   `json:"category" validate:"notblank,category"`
	Price    *Guarani `json:"price" validate:"required,gt=0"`
	Stock    *int64   `json:"stock" validate:"required,gte=0"`
}

// Fields convierte la entrada ya validada en campos de negocio.
func (r ProductRequest) Fields() entity.ProductFields {
	f := entity.ProductFields{Name: r.Name, Code: r.Code, Category: r.Category}
	if r.Price != nil {
		f.Price = int64(*r.Price)
	}
	if r.Stock != nil {
		f.Stock = *r.Stock
	}
	return f
}

// CreateProductResponse id asignado por el store. El producto aparece en el estado con la
// siguiente notificación de la suscripción.
type CreateProductResponse struct {
	ID string `json:"id"`
}
