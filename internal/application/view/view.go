// Package view calcula las vistas derivadas del conjunto de productos: listado filtrado,
// categorías, stock bajo y totales del dashboard.
//
// Compute es una función pura: no guarda estado ni depende del reloj.
package view

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
)

// AllCategories valor del filtro de categoría que no filtra. "" equivale.
const AllCategories = "all"

// Filter estado efímero del buscador y del selector de categoría.
type Filter struct {
	Search   string `json:"search"`
	Category string `json:"category"`
}

// AllCategories true si el filtro de categoría no restringe.
func (f Filter) AllCategories() bool {
	return f.Category == "" || f.Category == AllCategories
}

// Item producto con su clasificación de stock y su valor de inventario.
type Item struct {
	entity.Product
	Status entity.StockStatus `json:"status"`
	Value  int64              `json:"value"` // precio × stock
}

// Stats tarjetas del dashboard. Todo se calcula sobre el conjunto completo salvo FilteredCount.
type Stats struct {
	TotalProducts int   `json:"total_products"`
	TotalValue    int64 `json:"total_value"`
	LowStockCount int   `json:"low_stock_count"`
	CategoryCount int   `json:"category_count"`
	FilteredCount int   `json:"filtered_count"`
}

// View resultado de Compute.
type View struct {
	Items      []Item   `json:"items"`
	Categories []string `json:"categories"`
	LowStock   []Item   `json:"low_stock"`
	Stats      Stats    `json:"stats"`
}

// Compute aplica el filtro sobre products (en el orden recibido) y calcula los agregados.
//
// Items: nombre o código contiene la búsqueda sin distinguir mayúsculas, y la categoría coincide.
// Categories: categorías distintas del conjunto completo, en orden de aparición.
// LowStock: productos con stock <= entity.LowStockThreshold del conjunto completo.
func Compute(products []entity.Product, f Filter) View {
	m := newMatcher(f)
	v := View{
		Items:      make([]Item, 0, len(products)),
		Categories: []string{},
		LowStock:   []Item{},
	}
	seen := make(map[string]struct{}, len(products))

	for _, p := range products {
		it := newItem(p)

		v.Stats.TotalProducts++
		v.Stats.TotalValue += it.Value

		if _, ok := seen[p.Category]; !ok && p.Category != "" {
			seen[p.Category] = struct{}{}
			v.Categories = append(v.Categories, p.Category)
		}
		if entity.IsLowStock(p.Stock) {
			v.LowStock = append(v.LowStock, it)
		}
		if m.match(p) {
			v.Items = append(v.Items, it)
		}
	}

	v.Stats.LowStockCount = len(v.LowStock)
	v.Stats.CategoryCount = len(v.Categories)
	v.Stats.FilteredCount = len(v.Items)
	return v
}

// Apply solo el listado filtrado; atajo sobre Compute.
func Apply(products []entity.Product, f Filter) []Item {
	return Compute(products, f).Items
}

// LowStockAlert texto del aviso de stock bajo; vacío si no hay productos en alerta.
func (v View) LowStockAlert() string {
	if n := len(v.LowStock); n > 0 {
		return fmt.Sprintf("%d producto(s) con stock bajo o agotado.", n)
	}
	return ""
}

// FoundLabel contador del listado: "N productos encontrados".
func (v View) FoundLabel() string {
	if v.Stats.FilteredCount == 1 {
		return "1 producto encontrado"
	}
	return fmt.Sprintf("%d productos encontrados", v.Stats.FilteredCount)
}

func newItem(p entity.Product) Item {
	return Item{Product: p, Status: entity.ClassifyStock(p.Stock), Value: p.Value()}
}

// matcher guarda la búsqueda ya normalizada. cases.Caser no se comparte entre goroutines.
type matcher struct {
	fold     cases.Caser
	term     string
	category string
	all      bool
}

func newMatcher(f Filter) *matcher {
	m := &matcher{fold: cases.Fold(), category: f.Category, all: f.AllCategories()}
	m.term = m.fold.String(f.Search)
	return m
}

func (m *matcher) match(p entity.Product) bool {
	if !m.all && p.Category != m.category {
		return false
	}
	if m.term == "" {
		return true
	}
	return strings.Contains(m.fold.String(p.Name), m.term) ||
		strings.Contains(m.fold.String(p.Code), m.term)
}
