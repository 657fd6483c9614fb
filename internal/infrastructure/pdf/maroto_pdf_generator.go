// Package pdf implementa el reporte de inventario en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Reporte de Inventario   │  Usuario + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TARJETAS: Productos | Valor total | Stock bajo | Categorías │
//	│  Filtro aplicado                                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Producto | Categoría | Precio | Stock |     │
//	│         Estado | Valor                                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ALERTA: productos con stock bajo o agotado                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Inventario-sync/internal/application/report"
	"github.com/jhoicas/Inventario-sync/internal/application/view"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/pkg/currency"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 185, Green: 28, Blue: 28}
	colorYellow  = &props.Color{Red: 161, Green: 98, Blue: 7}
	colorGreen   = &props.Color{Red: 21, Green: 128, Blue: 61}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ report.PDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa report.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInventoryPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInventoryPDF(_ context.Context, r report.InventoryReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de Inventario", true).
		WithAuthor(r.OwnerEmail, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(statsRow(r.View.Stats))
	m.AddRows(filterRow(r.Filter, r.View))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(r.View.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(r.View))

	if len(r.View.LowStock) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(lowStockRows(r.View)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y usuario + fecha (der).
func headerRow(r report.InventoryReport) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("REPORTE DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New(r.OwnerEmail, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
		),
	)
}

// statsRow: las cuatro tarjetas del dashboard.
func statsRow(s view.Stats) core.Row {
	card := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Top: 5, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		card("Total productos", strconv.Itoa(s.TotalProducts)),
		card("Valor total", "Gs. "+currency.FormatAmount(s.TotalValue)),
		card("Stock bajo", strconv.Itoa(s.LowStockCount)),
		card("Categorías", strconv.Itoa(s.CategoryCount)),
	)
}

// filterRow: búsqueda y categoría aplicadas + contador.
func filterRow(f view.Filter, v view.View) core.Row {
	category := f.Category
	if f.AllCategories() {
		category = "Todas"
	}
	search := f.Search
	if search == "" {
		search = "—"
	}
	return row.New(7).Add(
		col.New(8).Add(text.New(
			fmt.Sprintf("Búsqueda: %s   |   Categoría: %s", search, category),
			props.Text{Size: 8, Top: 1, Color: colorGray},
		)),
		col.New(4).Add(text.New(v.FoundLabel(), props.Text{
			Size: 8, Top: 1, Align: align.Right, Color: colorGray,
		})),
	)
}

// tableHeaderRow: cabecera de la tabla de productos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Código", 1, align.Left),
		h("Producto", 3, align.Left),
		h("Categoría", 2, align.Left),
		h("Precio", 2, align.Right),
		h("Stock", 1, align.Center),
		h("Estado", 1, align.Center),
		h("Valor", 2, align.Right),
	)
}

// tableDetailRows: una fila por producto de la vista filtrada.
func tableDetailRows(items []view.Item) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(it.Code, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(it.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(it.Category, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(
				"Gs. "+currency.FormatAmount(it.Price),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				strconv.FormatInt(it.Stock, 10),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(1).Add(text.New(it.Status.Label, props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Center, Top: 1.5,
				Color: statusColor(it.Status.Level),
			})),
			col.New(2).Add(text.New(
				"Gs. "+currency.FormatAmount(it.Value),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	if len(result) == 0 {
		result = append(result, row.New(10).Add(col.New(12).Add(
			text.New("No se encontraron productos", props.Text{
				Size: 9, Align: align.Center, Top: 3, Color: colorGray,
			}),
		)))
	}
	return result
}

// totalsRow: valor del inventario completo alineado a la derecha.
func totalsRow(v view.View) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("VALOR TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New("Gs. "+currency.FormatAmount(v.Stats.TotalValue), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

// lowStockRows: aviso y listado de productos con stock bajo o agotado.
func lowStockRows(v view.View) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New(v.LowStockAlert(), props.Text{
				Style: fontstyle.Bold, Size: 9, Color: colorYellow, Top: 1,
			}),
		)),
	}
	for _, it := range v.LowStock {
		rows = append(rows, row.New(5).Add(
			col.New(6).Add(text.New(it.Name+" ("+it.Code+")", props.Text{Size: 8, Left: 2})),
			col.New(3).Add(text.New("Stock: "+strconv.FormatInt(it.Stock, 10), props.Text{Size: 8})),
			col.New(3).Add(text.New(it.Status.Label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: statusColor(it.Status.Level),
			})),
		))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusColor(level entity.StockLevel) *props.Color {
	switch level {
	case entity.StockOut:
		return colorRed
	case entity.StockLow:
		return colorYellow
	default:
		return colorGreen
	}
}
