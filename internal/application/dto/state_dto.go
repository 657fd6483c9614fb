package dto

import (
	"github.com/jhoicas/Inventario-sync/internal/application/view"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
)

// SessionResponse respuesta pública de GET /api/session (pantalla de carga / login).
type SessionResponse struct {
	Loading       bool   `json:"loading"`
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
}

// FilterRequest entrada de PUT /api/filter.
type FilterRequest struct {
	Search   string `json:"search"`
	Category string `json:"category"`
}

// StateResponse estado completo que consume la UI: sesión, conjunto de productos, filtro,
// vista derivada y el último error de suscripción (si lo hay).
type StateResponse struct {
	Loading    bool             `json:"loading"`
	User       *UserResponse    `json:"user"`
	Status     string           `json:"sync_status"`
	SyncError  string           `json:"sync_error,omitempty"`
	Filter     view.Filter      `json:"filter"`
	Products   []entity.Product `json:"products"`
	View       view.View        `json:"view"`
	Alert      string           `json:"low_stock_alert,omitempty"`
	FoundLabel string           `json:"found_label"`
	Version    uint64           `json:"version"`
}
