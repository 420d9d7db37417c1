package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lot-ledger/internal/application/analytics"
	"github.com/jhoicas/lot-ledger/internal/application/ledger"
	"github.com/jhoicas/lot-ledger/internal/application/usecase"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/statement"
	apphttp "github.com/jhoicas/lot-ledger/internal/interfaces/http"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

// directEmitter escribe los eventos de auditoría de forma síncrona para poder consultarlos en el test.
type directEmitter struct {
	repo *memory.AuditLogRepo
}

func (d directEmitter) Emit(ev entity.AuditEvent) {
	_ = d.repo.Create(context.Background(), &ev)
}

// newServer arma la API completa sobre el almacén en memoria.
func newServer(t *testing.T, secret string, limiter fiber.Handler) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()
	products := memory.NewProductRepository(store)
	lots := memory.NewLotRepository(store)
	txns := memory.NewTransactionRepository(store)
	logs := memory.NewAuditLogRepository(store)
	runner := memory.NewTxRunner(store)
	events := directEmitter{repo: logs}

	catalog := cache.NewProductCatalog(products, nil, 0, log)
	balance := ledger.NewBalanceEngine(txns, memory.NewSummaryRepository(store), log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:    usecase.NewProductUseCase(products, catalog, events),
		Registry:     ledger.NewLotRegistry(runner, lots, catalog, balance, events, log),
		Journal:      ledger.NewJournal(runner, lots, txns, balance, events, log),
		Balance:      balance,
		Statement:    ledger.NewStatementUseCase(lots, txns, catalog, balance, statement.NewXMLRenderer(), log),
		DashboardUC:  analytics.NewDashboardUseCase(balance, pdf.NewMarotoReportGenerator("es-CO")),
		AuditLogUC:   usecase.NewAuditLogUseCase(logs),
		JWTSecret:    secret,
		WriteLimiter: limiter,
	})
	return app
}

type call struct {
	method string
	path   string
	body   any
	token  string
}

func send(t *testing.T, app *fiber.App, c call) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := c.body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func jsonOf(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "cuerpo: %s", raw)
	return out
}

// seedLot crea un producto y un lote con stock inicial y devuelve el ID del lote.
func seedLot(t *testing.T, app *fiber.App, token string, initial string) string {
	t.Helper()
	resp, raw := send(t, app, call{method: http.MethodPost, path: "/api/products", token: token, body: map[string]any{
		"name": "Steel Rod 12mm", "material_grade": "Fe500", "type": "TMT", "unit": "KG",
		"price_per_unit": "65", "weight_per_unit": "0.888",
	}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	productID := jsonOf(t, raw)["id"].(string)

	resp, raw = send(t, app, call{method: http.MethodPost, path: "/api/lots", token: token, body: map[string]any{
		"product_id": productID, "lot_number": "L-001", "batch_number": "B-7", "heat_number": "H-19",
		"location": "Rack A", "safety_stock_level": "2", "initial_quantity": initial,
	}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	lot := jsonOf(t, raw)
	assert.Equal(t, initial, lot["available_quantity"])
	return lot["id"].(string)
}

func TestAPI_LedgerLifecycle(t *testing.T) {
	app := newServer(t, "", nil)
	lotID := seedLot(t, app, "", "5")

	resp, raw := send(t, app, call{method: http.MethodPost, path: "/api/transactions", body: map[string]any{
		"lot_id": lotID, "type": "ADJUST", "quantity": "1",
	}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", jsonOf(t, raw)["code"])

	// Salida mayor que el saldo: 409 con disponible y solicitado.
	resp, raw = send(t, app, call{method: http.MethodPost, path: "/api/transactions", body: map[string]any{
		"lot_id": lotID, "type": "out", "quantity": "10",
	}})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body := jsonOf(t, raw)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "5", details["available"])
	assert.Equal(t, "10", details["requested"])

	resp, raw = send(t, app, call{method: http.MethodPost, path: "/api/transactions", body: map[string]any{
		"lot_id": lotID, "type": "OUT", "quantity": "2", "remarks": "despacho",
	}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	assert.Equal(t, "3", jsonOf(t, raw)["available_quantity"])

	resp, raw = send(t, app, call{method: http.MethodGet, path: "/api/lots/" + lotID + "/balance"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	bal := jsonOf(t, raw)
	assert.Equal(t, "3", bal["available_quantity"])
	assert.Equal(t, "5", bal["total_in"])
	assert.Equal(t, "2", bal["total_out"])

	// Lote con saldo: no se puede eliminar.
	resp, raw = send(t, app, call{method: http.MethodDelete, path: "/api/lots/" + lotID})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body = jsonOf(t, raw)
	assert.Equal(t, "LOT_NOT_EMPTY", body["code"])
	assert.Equal(t, "3", body["details"].(map[string]any)["available_quantity"])

	resp, _ = send(t, app, call{method: http.MethodPost, path: "/api/transactions", body: map[string]any{
		"lot_id": lotID, "type": "OUT", "quantity": "3",
	}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = send(t, app, call{method: http.MethodDelete, path: "/api/lots/" + lotID})
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, raw = send(t, app, call{method: http.MethodPost, path: "/api/transactions", body: map[string]any{
		"lot_id": lotID, "type": "IN", "quantity": "1",
	}})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "LOT_DELETED", jsonOf(t, raw)["code"])

	resp, raw = send(t, app, call{method: http.MethodGet, path: "/api/lots/" + lotID + "/transactions"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(raw, &history))
	require.Len(t, history, 3)
	assert.Equal(t, "OUT", history[0]["type"], "más reciente primero")
}

func TestAPI_ErrorMapping(t *testing.T) {
	app := newServer(t, "", nil)

	cases := []struct {
		name   string
		call   call
		status int
		code   string
	}{
		{"lote inexistente", call{method: http.MethodGet, path: "/api/lots/missing"}, fiber.StatusNotFound, "NOT_FOUND"},
		{"movimiento inexistente", call{method: http.MethodGet, path: "/api/transactions/missing"}, fiber.StatusNotFound, "NOT_FOUND"},
		{"producto inexistente", call{method: http.MethodGet, path: "/api/products/missing"}, fiber.StatusNotFound, "NOT_FOUND"},
		{"cuerpo inválido", call{method: http.MethodPost, path: "/api/transactions", body: "{not json"}, fiber.StatusBadRequest, "INVALID_BODY"},
		{"movimiento a lote inexistente", call{method: http.MethodPost, path: "/api/transactions", body: map[string]any{
			"lot_id": "missing", "type": "IN", "quantity": "1",
		}}, fiber.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := send(t, app, tc.call)
			assert.Equal(t, tc.status, resp.StatusCode, string(raw))
			assert.Equal(t, tc.code, jsonOf(t, raw)["code"])
		})
	}
}

func TestAPI_StatementHeaders(t *testing.T) {
	app := newServer(t, "", nil)
	lotID := seedLot(t, app, "", "12.5")

	resp, raw := send(t, app, call{method: http.MethodGet, path: "/api/lots/" + lotID + "/statement"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, statement.ContentType, resp.Header.Get("Content-Type"))

	digest := resp.Header.Get("X-Statement-Digest")
	assert.True(t, strings.HasPrefix(digest, statement.DigestPrefix), digest)
	want, err := statement.Digest(raw)
	require.NoError(t, err)
	assert.Equal(t, want, digest)
	assert.Contains(t, string(raw), "<LotStatement")
}

func TestAPI_DashboardReport(t *testing.T) {
	app := newServer(t, "", nil)
	seedLot(t, app, "", "40")

	resp, raw := send(t, app, call{method: http.MethodGet, path: "/api/dashboard/summary"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "40", jsonOf(t, raw)["total_stock"])

	resp, raw = send(t, app, call{method: http.MethodGet, path: "/api/dashboard/report"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestAPI_AuthAndRoles(t *testing.T) {
	app := newServer(t, testJWTSecret, nil)
	admin := tokenForRole(t, apphttp.RoleAdmin)
	operator := tokenForRole(t, apphttp.RoleOperator)

	resp, raw := send(t, app, call{method: http.MethodGet, path: "/api/lots"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", jsonOf(t, raw)["code"])

	lotID := seedLot(t, app, operator, "0")

	resp, raw = send(t, app, call{method: http.MethodDelete, path: "/api/lots/" + lotID, token: operator})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", jsonOf(t, raw)["code"])

	resp, _ = send(t, app, call{method: http.MethodGet, path: "/api/logs", token: operator})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = send(t, app, call{method: http.MethodDelete, path: "/api/lots/" + lotID, token: admin})
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, raw = send(t, app, call{method: http.MethodGet, path: "/api/logs/user/" + testUserID, token: admin})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	logs := jsonOf(t, raw)
	items := logs["items"].([]any)
	require.NotEmpty(t, items)
	newest := items[0].(map[string]any)
	assert.Equal(t, entity.ActionLotDeleted, newest["action"])
	assert.Equal(t, testEmail, newest["user_email"])
}

func TestAPI_ProductDelete(t *testing.T) {
	app := newServer(t, testJWTSecret, nil)
	admin := tokenForRole(t, apphttp.RoleAdmin)
	operator := tokenForRole(t, apphttp.RoleOperator)

	lotID := seedLot(t, app, admin, "0")
	resp, raw := send(t, app, call{method: http.MethodGet, path: "/api/lots/" + lotID, token: admin})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	productID := jsonOf(t, raw)["product_id"].(string)

	resp, _ = send(t, app, call{method: http.MethodDelete, path: "/api/products/" + productID, token: operator})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// El lote eliminado sigue bloqueando el borrado del producto.
	resp, _ = send(t, app, call{method: http.MethodDelete, path: "/api/lots/" + lotID, token: admin})
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp, raw = send(t, app, call{method: http.MethodDelete, path: "/api/products/" + productID, token: admin})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PRODUCT_IN_USE", jsonOf(t, raw)["code"])

	resp, raw = send(t, app, call{method: http.MethodPost, path: "/api/products", token: admin, body: map[string]any{
		"name": "Flat Bar", "material_grade": "S275", "type": "Bar", "unit": "KG", "price_per_unit": "40",
	}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	freeID := jsonOf(t, raw)["id"].(string)

	resp, _ = send(t, app, call{method: http.MethodDelete, path: "/api/products/" + freeID, token: admin})
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp, raw = send(t, app, call{method: http.MethodDelete, path: "/api/products/" + freeID, token: admin})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", jsonOf(t, raw)["code"])

	resp, raw = send(t, app, call{method: http.MethodGet, path: "/api/logs?entity_type=Product", token: admin})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	items := jsonOf(t, raw)["items"].([]any)
	require.NotEmpty(t, items)
	assert.Equal(t, entity.ActionProductDeleteNotFound, items[0].(map[string]any)["action"])
}

func TestAPI_QuantityPrecision(t *testing.T) {
	app := newServer(t, "", nil)
	lotID := seedLot(t, app, "", "5")

	resp, raw := send(t, app, call{method: http.MethodPost, path: "/api/transactions", body: map[string]any{
		"lot_id": lotID, "type": "IN", "quantity": "0.00001",
	}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", jsonOf(t, raw)["code"])

	resp, raw = send(t, app, call{method: http.MethodGet, path: "/api/lots/" + lotID + "/balance"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "5", jsonOf(t, raw)["available_quantity"])
}

func TestAPI_WriteRateLimit(t *testing.T) {
	limiter, err := apphttp.RateLimit("2-M")
	require.NoError(t, err)
	app := newServer(t, "", limiter)

	for i := 0; i < 2; i++ {
		resp, _ := send(t, app, call{method: http.MethodPost, path: "/api/transactions", body: "{}"})
		assert.NotEqual(t, fiber.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	}
	resp, raw := send(t, app, call{method: http.MethodPost, path: "/api/transactions", body: "{}"})
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", jsonOf(t, raw)["code"])

	// Las lecturas no pasan por el limitador.
	resp, _ = send(t, app, call{method: http.MethodGet, path: "/api/lots"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRateLimit_InvalidFormat(t *testing.T) {
	_, err := apphttp.RateLimit("muchas")
	assert.Error(t, err)
}
