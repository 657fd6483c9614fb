package entity

import "time"

// LowStockThreshold stock a partir del cual (inclusive) un producto se considera con stock bajo.
const LowStockThreshold int64 = 5

// DefaultCategories categorías del formulario de productos.
var DefaultCategories = []string{"Alimentos", "Bebidas", "Limpieza", "Higiene", "Otros"}

// ProductFields atributos de negocio que edita el usuario.
// Update los reemplaza completos.
type ProductFields struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Category string `json:"category"`
	Price    int64  `json:"price"` // guaraníes, sin decimales, > 0
	Stock    int64  `json:"stock"` // >= 0
}

// ProductData documento tal como vive en el store remoto (sin id).
type ProductData struct {
	ProductFields
	OwnerID   string     `json:"owner_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Product documento del store combinado con su id.
// Las copias locales son una proyección de solo lectura; la copia autoritativa es la remota.
type Product struct {
	ID string `json:"id"`
	ProductData
}

// Value valor de inventario del producto (precio × stock).
func (p Product) Value() int64 {
	return p.Price * p.Stock
}

// StockLevel clasificación del stock de un producto.
type StockLevel string

const (
	StockOut StockLevel = "out_of_stock"
	StockLow StockLevel = "low_stock"
	StockIn  StockLevel = "in_stock"
)

// StockStatus estado de stock con la etiqueta y el color que muestra la UI.
type StockStatus struct {
	Level StockLevel `json:"level"`
	Label string     `json:"label"`
	Color string     `json:"color"`
}

// ClassifyStock: 0 → "Sin stock", 1..5 → "Stock bajo", >5 → "En stock".
func ClassifyStock(stock int64) StockStatus {
	switch {
	case stock <= 0:
		return StockStatus{Level: StockOut, Label: "Sin stock", Color: "red"}
	case stock <= LowStockThreshold:
		return StockStatus{Level: StockLow, Label: "Stock bajo", Color: "yellow"}
	default:
		return StockStatus{Level: StockIn, Label: "En stock", Color: "green"}
	}
}

// IsLowStock true si el stock está en o por debajo del umbral (incluye agotados).
func IsLowStock(stock int64) bool {
	return stock <= LowStockThreshold
}
