package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-sync/internal/application/view"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
)

func product(id, name, code, category string, price, stock int64) entity.Product {
	return entity.Product{
		ID: id,
		ProductData: entity.ProductData{
			ProductFields: entity.ProductFields{Name: name, Code: code, Category: category, Price: price, Stock: stock},
			OwnerID:       "u1",
		},
	}
}

func aguaJabon() []entity.Product {
	return []entity.Product{
		product("p1", "Agua", "A1", "Bebidas", 5000, 0),
		product("p2", "Jabón", "J1", "Higiene", 8000, 10),
	}
}

func names(items []view.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

// ─── Escenarios ─────────────────────────────────────────────────────────────

func TestCompute_AguaJabon_TotalesYStockBajo(t *testing.T) {
	v := view.Compute(aguaJabon(), view.Filter{})

	assert.Equal(t, 2, v.Stats.TotalProducts)
	assert.Equal(t, int64(80000), v.Stats.TotalValue)
	require.Len(t, v.LowStock, 1)
	assert.Equal(t, "Agua", v.LowStock[0].Name)
	assert.Equal(t, "Sin stock", v.LowStock[0].Status.Label)
	assert.Equal(t, entity.StockOut, v.LowStock[0].Status.Level)
	assert.Equal(t, "1 producto(s) con stock bajo o agotado.", v.LowStockAlert())
}

func TestCompute_BusquedaJab_TodasLasCategorias(t *testing.T) {
	v := view.Compute(aguaJabon(), view.Filter{Search: "jab", Category: view.AllCategories})

	assert.Equal(t, []string{"Jabón"}, names(v.Items))
	assert.Equal(t, 1, v.Stats.FilteredCount)
	assert.Equal(t, "1 producto encontrado", v.FoundLabel())
}

// ─── Propiedades ────────────────────────────────────────────────────────────

func TestCompute_CategoriasDelConjuntoCompleto(t *testing.T) {
	products := append(aguaJabon(), product("p3", "Lavandina", "L1", "Limpieza", 12000, 3))

	for _, f := range []view.Filter{
		{},
		{Category: "Higiene"},
		{Search: "zzz"},
		{Search: "agua", Category: "Bebidas"},
	} {
		v := view.Compute(products, f)
		assert.Equal(t, []string{"Bebidas", "Higiene", "Limpieza"}, v.Categories, "filtro %+v", f)
		assert.Equal(t, 3, v.Stats.CategoryCount)
	}
}

func TestCompute_CategoriasSinRepetir(t *testing.T) {
	products := []entity.Product{
		product("p1", "Agua", "A1", "Bebidas", 5000, 1),
		product("p2", "Gaseosa", "G1", "Bebidas", 9000, 7),
		product("p3", "Arroz", "R1", "Alimentos", 7000, 9),
	}
	assert.Equal(t, []string{"Bebidas", "Alimentos"}, view.Compute(products, view.Filter{}).Categories)
}

func TestCompute_StockBajoSubconjuntoConUmbral(t *testing.T) {
	var products []entity.Product
	for stock := int64(0); stock <= 8; stock++ {
		products = append(products, product("p", "P", "C", "Otros", 1000, stock))
	}

	v := view.Compute(products, view.Filter{Search: "no-coincide"})

	require.Len(t, v.LowStock, 6)
	for _, it := range v.LowStock {
		assert.LessOrEqual(t, it.Stock, entity.LowStockThreshold)
	}
	in := 0
	for _, p := range products {
		if p.Stock > entity.LowStockThreshold {
			in++
		}
	}
	assert.Equal(t, len(products)-len(v.LowStock), in)
}

func TestCompute_ClasificacionPorProducto(t *testing.T) {
	products := []entity.Product{
		product("p1", "A", "1", "Otros", 1, 0),
		product("p2", "B", "2", "Otros", 1, 5),
		product("p3", "C", "3", "Otros", 1, 6),
	}
	v := view.Compute(products, view.Filter{})

	require.Len(t, v.Items, 3)
	assert.Equal(t, entity.StockStatus{Level: entity.StockOut, Label: "Sin stock", Color: "red"}, v.Items[0].Status)
	assert.Equal(t, entity.StockStatus{Level: entity.StockLow, Label: "Stock bajo", Color: "yellow"}, v.Items[1].Status)
	assert.Equal(t, entity.StockStatus{Level: entity.StockIn, Label: "En stock", Color: "green"}, v.Items[2].Status)
}

func TestCompute_FiltroIdempotente(t *testing.T) {
	products := append(aguaJabon(), product("p3", "Jabón líquido", "J2", "Limpieza", 15000, 2))
	f := view.Filter{Search: "JAB", Category: "Higiene"}

	first := view.Apply(products, f)
	second := view.Apply(products, f)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"Jabón"}, names(first))
}

func TestCompute_BuscaPorCodigoSinMayusculas(t *testing.T) {
	v := view.Compute(aguaJabon(), view.Filter{Search: "a1"})
	assert.Equal(t, []string{"Agua"}, names(v.Items))
}

func TestCompute_CategoriaVaciaEsTodas(t *testing.T) {
	all := view.Compute(aguaJabon(), view.Filter{Category: ""})
	explicit := view.Compute(aguaJabon(), view.Filter{Category: view.AllCategories})
	assert.Equal(t, all.Items, explicit.Items)
	assert.Len(t, all.Items, 2)
}

func TestCompute_ConservaOrdenDeEntrada(t *testing.T) {
	products := []entity.Product{
		product("p1", "Aceite", "X1", "Alimentos", 1, 10),
		product("p2", "Arroz", "X2", "Alimentos", 1, 10),
		product("p3", "Azúcar", "X3", "Alimentos", 1, 10),
	}
	v := view.Compute(products, view.Filter{Search: "x"})
	assert.Equal(t, []string{"Aceite", "Arroz", "Azúcar"}, names(v.Items))
}

func TestCompute_ConjuntoVacio(t *testing.T) {
	v := view.Compute(nil, view.Filter{Search: "a"})

	assert.Empty(t, v.Items)
	assert.Empty(t, v.Categories)
	assert.Empty(t, v.LowStock)
	assert.Equal(t, view.Stats{}, v.Stats)
	assert.Equal(t, "", v.LowStockAlert())
	assert.Equal(t, "0 productos encontrados", v.FoundLabel())
}
