// Package report genera el reporte PDF del inventario a partir del estado publicado.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-sync/internal/application/inventory"
	"github.com/jhoicas/Inventario-sync/internal/application/view"
	"github.com/jhoicas/Inventario-sync/internal/domain"
)

// InventoryReport datos que se imprimen: la vista filtrada actual y sus totales.
type InventoryReport struct {
	OwnerEmail  string
	GeneratedAt time.Time
	Filter      view.Filter
	View        view.View
}

// PDFGenerator puerto de salida: renderiza el reporte en PDF.
type PDFGenerator interface {
	GenerateInventoryPDF(ctx context.Context, r InventoryReport) ([]byte, error)
}

// StateSource estado publicado por el controlador.
type StateSource interface {
	State() *inventory.State
}

// UseCase arma el reporte con el estado actual y delega el render.
type UseCase struct {
	states    StateSource
	generator PDFGenerator
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(states StateSource, generator PDFGenerator) *UseCase {
	return &UseCase{states: states, generator: generator, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Inventory devuelve el PDF y su nombre de archivo.
// domain.ErrUnauthorized si no hay sesión.
func (uc *UseCase) Inventory(ctx context.Context) (pdfBytes []byte, filename string, err error) {
	st := uc.states.State()
	if st == nil || st.Identity == nil {
		return nil, "", domain.ErrUnauthorized
	}
	now := uc.now()
	r := InventoryReport{
		OwnerEmail:  st.Identity.Email,
		GeneratedAt: now,
		Filter:      st.Filter,
		View:        st.View,
	}
	pdfBytes, err = uc.generator.GenerateInventoryPDF(ctx, r)
	if err != nil {
		return nil, "", fmt.Errorf("reporte de inventario: %w", err)
	}
	return pdfBytes, fmt.Sprintf("inventario-%s.pdf", now.Format("20060102-1504")), nil
}
