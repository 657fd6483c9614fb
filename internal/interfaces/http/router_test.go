package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Inventario-sync/internal/application/dto"
	"github.com/jhoicas/Inventario-sync/internal/application/inventory"
	"github.com/jhoicas/Inventario-sync/internal/application/report"
	"github.com/jhoicas/Inventario-sync/internal/application/session"
	"github.com/jhoicas/Inventario-sync/internal/application/validation"
	"github.com/jhoicas/Inventario-sync/internal/infrastructure/auth"
	"github.com/jhoicas/Inventario-sync/internal/infrastructure/memstore"
	"github.com/jhoicas/Inventario-sync/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Inventario-sync/internal/interfaces/http"
	"github.com/jhoicas/Inventario-sync/pkg/logger"
)

const wait = 2 * time.Second

// newAPI arma la API completa sobre el store en memoria y el proveedor local.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	provider := auth.NewLocalProvider(
		memstore.NewUserRepository(),
		auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer},
		zerolog.Nop(),
		auth.WithBcryptCost(bcrypt.MinCost),
	)
	val := validation.New(nil)
	ctrl := inventory.NewController(
		session.NewManager(provider, zerolog.Nop()),
		memstore.NewProductStore(),
		provider,
		val,
		inventory.Config{},
		logger.Nop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	require.Eventually(t, func() bool { return !ctrl.State().Loading }, wait, 5*time.Millisecond)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Controller: ctrl,
		Validator:  val,
		Reports:    report.NewUseCase(ctrl, pdf.NewMarotoPDFGenerator()),
		JWTSecret:  testJWTSecret,

		StreamHeartbeat: 30 * time.Millisecond,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func register(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: email, Password: "secreto1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.LoginResponse](t, resp)
	require.NotEmpty(t, out.Token)
	assert.Equal(t, email, out.User.Email)
	return out.Token
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: "secreto1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[dto.LoginResponse](t, resp).Token
}

func state(t *testing.T, app *fiber.App, token string) dto.StateResponse {
	t.Helper()
	resp := call(t, app, http.MethodGet, "/api/state", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[dto.StateResponse](t, resp)
}

func product(name, code, category string, price, stock int64) map[string]any {
	return map[string]any{"name": name, "code": code, "category": category, "price": price, "stock": stock}
}

// ─── Sesión ──────────────────────────────────────────────────────────────────

func TestAPI_SessionPublica(t *testing.T) {
	app := newAPI(t)

	resp := call(t, app, http.MethodGet, "/api/session", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.SessionResponse](t, resp)
	assert.False(t, out.Loading)
	assert.False(t, out.Authenticated)

	register(t, app, "ana@example.com")
	out = decode[dto.SessionResponse](t, call(t, app, http.MethodGet, "/api/session", "", nil))
	assert.True(t, out.Authenticated)
	assert.Equal(t, "ana@example.com", out.Email)
}

func TestAPI_RegistroDuplicadoYLoginInvalido(t *testing.T) {
	app := newAPI(t)
	register(t, app, "ana@example.com")

	resp := call(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "ana@example.com", Password: "secreto1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ana@example.com", Password: "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "no-es-email", Password: "123"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Contains(t, out.Fields, "email")
	assert.Contains(t, out.Fields, "password")
}

func TestAPI_LogoutInvalidaElToken(t *testing.T) {
	app := newAPI(t)
	token := register(t, app, "ana@example.com")

	resp := call(t, app, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/state", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "SESSION_MISMATCH", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAPI_LoginDeOtroUsuarioInvalidaTokenAnterior(t *testing.T) {
	app := newAPI(t)
	tokenAna := register(t, app, "ana@example.com")
	tokenBeto := register(t, app, "beto@example.com")

	assert.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodGet, "/api/state", tokenAna, nil).StatusCode)
	assert.Equal(t, "beto@example.com", state(t, app, tokenBeto).User.Email)
}

// ─── Productos ───────────────────────────────────────────────────────────────

func TestAPI_CrearProductoApareceEnElEstado(t *testing.T) {
	app := newAPI(t)
	token := register(t, app, "ana@example.com")

	resp := call(t, app, http.MethodPost, "/api/products", token, product("Agua", "A1", "Bebidas", 5000, 10))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decode[dto.CreateProductResponse](t, resp).ID
	require.NotEmpty(t, id)

	// El precio también se acepta con formato de guaraníes.
	resp = call(t, app, http.MethodPost, "/api/products", token, map[string]any{
		"name": "Jabón", "code": "J1", "category": "Limpieza", "price": "₲ 8.000", "stock": 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Eventually(t, func() bool { return len(state(t, app, token).Products) == 2 }, wait, 10*time.Millisecond)
	st := state(t, app, token)
	assert.Equal(t, "subscribed", st.Status)
	assert.Equal(t, "Agua", st.Products[0].Name)
	assert.Equal(t, int64(74000), st.View.Stats.TotalValue)
	assert.Equal(t, 1, st.View.Stats.LowStockCount)
	assert.Equal(t, "1 producto(s) con stock bajo o agotado.", st.Alert)
	assert.Equal(t, "2 productos encontrados", st.FoundLabel)
}

func TestAPI_ProductoInvalido_422ConCampos(t *testing.T) {
	app := newAPI(t)
	token := register(t, app, "ana@example.com")

	resp := call(t, app, http.MethodPost, "/api/products", token, product("  ", "", "Juguetes", 0, -1))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Equal(t, "El nombre es requerido", out.Fields["name"])
	assert.Equal(t, "El precio debe ser mayor a 0", out.Fields["price"])
	assert.Equal(t, "El stock debe ser 0 o mayor", out.Fields["stock"])
}

func TestAPI_CuerpoInvalido_400(t *testing.T) {
	app := newAPI(t)
	token := register(t, app, "ana@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ActualizarYEliminar(t *testing.T) {
	app := newAPI(t)
	token := register(t, app, "ana@example.com")

	id := decode[dto.CreateProductResponse](t, call(t, app, http.MethodPost, "/api/products", token, product("Pan", "P1", "Alimentos", 3000, 20))).ID

	resp := call(t, app, http.MethodPut, "/api/products/"+id, token, product("Pan", "P1", "Alimentos", 3500, 2))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Eventually(t, func() bool {
		st := state(t, app, token)
		return len(st.Products) == 1 && st.Products[0].Price == 3500 && st.Products[0].UpdatedAt != nil
	}, wait, 10*time.Millisecond)

	resp = call(t, app, http.MethodDelete, "/api/products/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Eventually(t, func() bool { return len(state(t, app, token).Products) == 0 }, wait, 10*time.Millisecond)
}

func TestAPI_EliminarInexistente_WriteFailed(t *testing.T) {
	app := newAPI(t)
	token := register(t, app, "ana@example.com")

	resp := call(t, app, http.MethodDelete, "/api/products/missing-id", token, nil)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "WRITE_FAILED", out.Code)
	assert.Equal(t, "Error al eliminar el producto", out.Message)
}

func TestAPI_ProductoDeOtroUsuario_Forbidden(t *testing.T) {
	app := newAPI(t)
	tokenAna := register(t, app, "ana@example.com")
	aguaID := decode[dto.CreateProductResponse](t, call(t, app, http.MethodPost, "/api/products", tokenAna, product("Agua", "A1", "Bebidas", 5000, 10))).ID

	tokenBeto := register(t, app, "beto@example.com")

	resp := call(t, app, http.MethodDelete, "/api/products/"+aguaID, tokenBeto, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "FORBIDDEN", out.Code)
	assert.Equal(t, "Error al eliminar el producto", out.Message)

	resp = call(t, app, http.MethodPut, "/api/products/"+aguaID, tokenBeto, product("Robado", "R1", "Otros", 1, 1))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Error al actualizar el producto", decode[dto.ErrorResponse](t, resp).Message)

	// Ana vuelve y su producto sigue intacto.
	tokenAna = login(t, app, "ana@example.com")
	require.Eventually(t, func() bool { return len(state(t, app, tokenAna).Products) == 1 }, wait, 10*time.Millisecond)
	st := state(t, app, tokenAna)
	assert.Equal(t, aguaID, st.Products[0].ID)
	assert.Equal(t, "Agua", st.Products[0].Name)
}

func TestAPI_Categorias(t *testing.T) {
	app := newAPI(t)
	token := register(t, app, "ana@example.com")

	resp := call(t, app, http.MethodGet, "/api/products/categories", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Alimentos", "Bebidas", "Limpieza", "Higiene", "Otros"}, decode[[]string](t, resp))
}

// ─── Filtro / reportes / métricas ────────────────────────────────────────────

func TestAPI_FiltroSeAplicaAlEstado(t *testing.T) {
	app := newAPI(t)
	token := register(t, app, "ana@example.com")
	call(t, app, http.MethodPost, "/api/products", token, product("Agua", "A1", "Bebidas", 5000, 10))
	call(t, app, http.MethodPost, "/api/products", token, product("Jabón", "J1", "Limpieza", 8000, 3))
	require.Eventually(t, func() bool { return len(state(t, app, token).Products) == 2 }, wait, 10*time.Millisecond)

	resp := call(t, app, http.MethodPut, "/api/filter", token, dto.FilterRequest{Search: "jab", Category: "all"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[dto.StateResponse](t, resp)
	assert.Equal(t, "jab", st.Filter.Search)
	require.Len(t, st.View.Items, 1)
	assert.Equal(t, "Jabón", st.View.Items[0].Name)
	assert.Equal(t, "1 producto encontrado", st.FoundLabel)
	assert.Equal(t, 2, st.View.Stats.TotalProducts)
}

func TestAPI_ReportePDF(t *testing.T) {
	app := newAPI(t)
	token := register(t, app, "ana@example.com")

	resp := call(t, app, http.MethodGet, "/api/reports/inventory.pdf", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inventario-")

	buf := new(bytes.Buffer)
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestAPI_RutasProtegidasSinToken(t *testing.T) {
	app := newAPI(t)
	for _, path := range []string{"/api/state", "/api/reports/inventory.pdf", "/api/products/categories"} {
		resp := call(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestAPI_Metricas(t *testing.T) {
	app := newAPI(t)
	resp := call(t, app, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestToStateResponse_SinSesion(t *testing.T) {
	out := apphttp.ToStateResponse(&inventory.State{Loading: true})
	assert.True(t, out.Loading)
	assert.Nil(t, out.User)
	assert.Empty(t, out.SyncError)
	assert.Empty(t, out.Alert)
	assert.Equal(t, "0 productos encontrados", out.FoundLabel)
}
