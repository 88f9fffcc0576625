package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsaban/saband/internal/answer"
	"github.com/hsaban/saband/internal/config"
	"github.com/hsaban/saband/internal/db"
	"github.com/hsaban/saband/internal/domain"
	"github.com/hsaban/saband/internal/llm"
	"github.com/hsaban/saband/internal/store"
)

type stubModel struct {
	response string
	err      error
	calls    int
	lastReq  llm.Request
}

func (m *stubModel) Name() string { return "Gemini AI" }

func (m *stubModel) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

type stubSearch struct {
	link string
}

func (s *stubSearch) Configured() bool { return true }

func (s *stubSearch) ImageURL(ctx context.Context, query string) (string, error) {
	return s.link, nil
}

type testServer struct {
	*httptest.Server
	database  *sqlx.DB
	inventory *store.InventoryStore
	model     *stubModel
}

func newTestServer(t *testing.T, model *stubModel) *testServer {
	t.Helper()

	database, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	inventory := store.NewInventoryStore(database)
	business := store.NewBusinessStore(database)
	cache := store.NewCacheStore(database)
	history := store.NewHistoryStore(database)

	svc := answer.NewService(cache, inventory, business, history, model, &stubSearch{link: "https://cdn.example/img.jpg"}, answer.Options{
		DataVersion:    "v-test",
		CoveragePerBox: 1.44,
		ReserveBoxes:   0,
		EnrichBatch:    5,
	}, logger)

	srv := NewServer(Deps{
		Answers:   svc,
		Products:  store.NewProductStore(database),
		Inventory: inventory,
		Drivers:   store.NewDriverStore(database),
		Business:  business,
		Cache:     cache,
		History:   history,
		DB:        database,
		Config: &config.Config{
			ModelBackend: "gemini",
			GeminiAPIKey: "test-key",
			DataVersion:  "v-test",
		},
		Logger: logger,
	})

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, database: database, inventory: inventory, model: model}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestChatCalculatorFastPath(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	resp := ts.do(t, http.MethodPost, "/api/chat", map[string]any{
		"messages": []map[string]string{
			{"role": "user", "content": "כמה קרטונים אני צריך ל-80 מטר"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	bp := decode[domain.Blueprint](t, resp)
	assert.Equal(t, domain.BlueprintCalculator, bp.Type)
	require.Len(t, bp.Components, 1)
	assert.Equal(t, domain.ComponentCalcCard, bp.Components[0].Type)
	assert.EqualValues(t, 56, bp.Components[0].Props["boxes"])
	assert.Zero(t, ts.model.calls)
}

func TestAskModelAnswer(t *testing.T) {
	ts := newTestServer(t, &stubModel{
		response: `{"text":"אנחנו פתוחים עד 17:00","source":"Saban AI","type":"extended","components":[]}`,
	})

	resp := ts.do(t, http.MethodPost, "/api/ask", map[string]string{"query": "מתי אתם פתוחים"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	bp := decode[domain.Blueprint](t, resp)
	assert.Equal(t, "אנחנו פתוחים עד 17:00", bp.Text)
	assert.Equal(t, domain.BlueprintExtended, bp.Type)
	assert.Equal(t, 1, ts.model.calls)
}

func TestAskEmptyQueryRejected(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	resp := ts.do(t, http.MethodPost, "/api/ask", map[string]string{"query": "   "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, msgBadRequest, body["error"])
}

func TestChatNoMessagesRejected(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	resp := ts.do(t, http.MethodPost, "/api/chat", map[string]any{"messages": []any{}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAskModelFailureReturnsServerError(t *testing.T) {
	ts := newTestServer(t, &stubModel{err: errors.New("quota exceeded")})

	resp := ts.do(t, http.MethodPost, "/api/ask", map[string]string{"query": "שאלה כללית על חומרים"})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// Internal detail must not leak to the client.
	body := decode[map[string]string](t, resp)
	assert.Equal(t, msgInternal, body["error"])
	assert.NotContains(t, body["error"], "quota")
}

func TestChatForwardsTranscriptToModel(t *testing.T) {
	ts := newTestServer(t, &stubModel{
		response: `{"text":"79.9 שקלים","type":"extended"}`,
	})

	resp := ts.do(t, http.MethodPost, "/api/chat", map[string]any{
		"messages": []map[string]string{
			{"role": "user", "content": "ספרו לי על נירוקול"},
			{"role": "assistant", "content": "נירוקול הוא דבק שיש"},
			{"role": "user", "content": "וכמה הוא עולה"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	require.Equal(t, 1, ts.model.calls)
	assert.Equal(t, "וכמה הוא עולה", ts.model.lastReq.Prompt)
	require.Len(t, ts.model.lastReq.History, 2)
	assert.Equal(t, llm.RoleAssistant, ts.model.lastReq.History[1].Role)
}

func TestAskDatastoreFailureReturnsServerError(t *testing.T) {
	ts := newTestServer(t, &stubModel{response: "unused"})
	require.NoError(t, ts.database.Close())

	resp := ts.do(t, http.MethodPost, "/api/ask", map[string]string{"query": "שאלה על חומרים"})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// The client gets the generic message, never a 200 with an error inside.
	body := decode[map[string]string](t, resp)
	assert.Equal(t, msgInternal, body["error"])
	assert.Zero(t, ts.model.calls)
}

func TestCheckReportsConfiguration(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	resp := ts.do(t, http.MethodGet, "/api/check", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["db_connection"])
	assert.Equal(t, true, body["gemini_key"])
	assert.Equal(t, false, body["claude_key"])
	assert.Equal(t, "gemini", body["model_backend"])
}

func TestGetImage(t *testing.T) {
	ts := newTestServer(t, &stubModel{response: `{"image_url":"https://cdn.example/direct.jpg"}`})

	resp := ts.do(t, http.MethodPost, "/api/get-image", map[string]string{
		"productName": "נירוקול 28",
		"sku":         "NIR-200",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "https://cdn.example/direct.jpg", body["image_url"])
}

func TestGetImageRequiresProductName(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	resp := ts.do(t, http.MethodPost, "/api/get-image", map[string]string{"sku": "NIR-200"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestEnrichAll(t *testing.T) {
	ts := newTestServer(t, &stubModel{
		response: `{"img":"https://cdn.example/a.jpg","yt":"https://youtu.be/a","desc":"שליכט צבעוני"}`,
	})
	require.NoError(t, ts.inventory.Upsert(context.Background(), &domain.InventoryItem{
		SKU:         "SHL-100",
		ProductName: "שליכט צבעוני",
		Price:       120,
	}))

	resp := ts.do(t, http.MethodPost, "/api/enrich-all", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{"שליכט צבעוני"}, body["updated"])

	item, err := ts.inventory.GetBySKU(context.Background(), "SHL-100")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.jpg", item.ImageURL)
}

func TestProductLifecycle(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	product := map[string]any{
		"sku":          "NIR-200",
		"product_name": "נירוקול 28 ק\"ג",
		"category":     "הדבקה",
		"price":        79.9,
	}
	resp := ts.do(t, http.MethodPost, "/api/admin/products", product)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.Product](t, resp)
	assert.Equal(t, "NIR-200", created.SKU)
	assert.False(t, created.CreatedAt.IsZero())

	resp = ts.do(t, http.MethodGet, "/api/admin/products/NIR-200", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[domain.Product](t, resp)
	assert.Equal(t, 79.9, got.Price)

	product["price"] = 84.5
	resp = ts.do(t, http.MethodPut, "/api/admin/products/NIR-200", product)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/api/admin/products?q=נירוקול", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := decode[[]domain.Product](t, resp)
	require.Len(t, found, 1)
	assert.Equal(t, 84.5, found[0].Price)

	resp = ts.do(t, http.MethodDelete, "/api/admin/products/NIR-200", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/api/admin/products/NIR-200", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestProductValidation(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	resp := ts.do(t, http.MethodPost, "/api/admin/products", map[string]any{"category": "צבע"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestInventoryUpsertViaPut(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	item := map[string]any{
		"product_name": "דבק פלוס 7",
		"price":        45.0,
		"stock_qty":    12,
	}
	resp := ts.do(t, http.MethodPut, "/api/admin/inventory/DVK-007", item)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stored := decode[domain.InventoryItem](t, resp)
	assert.Equal(t, "DVK-007", stored.SKU)

	resp = ts.do(t, http.MethodGet, "/api/admin/inventory", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[[]domain.InventoryItem](t, resp)
	require.Len(t, items, 1)
	assert.EqualValues(t, 12, items[0].StockQty)

	resp = ts.do(t, http.MethodDelete, "/api/admin/inventory/DVK-007", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/api/admin/inventory/DVK-007", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestDriverStatusUpdate(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	resp := ts.do(t, http.MethodPost, "/api/admin/drivers", map[string]string{
		"full_name":    "יוסי כהן",
		"phone":        "050-1234567",
		"vehicle_type": "משאית מנוף",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	driver := decode[domain.Driver](t, resp)
	assert.Equal(t, domain.DriverActive, driver.Status)
	require.NotEmpty(t, driver.ID)

	resp = ts.do(t, http.MethodPut, "/api/admin/drivers/"+driver.ID, map[string]string{
		"status":   domain.DriverBusy,
		"location": "אשדוד",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[domain.Driver](t, resp)
	assert.Equal(t, domain.DriverBusy, updated.Status)
	assert.Equal(t, "אשדוד", updated.Location)
}

func TestDriverUpdateUnknownID(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	resp := ts.do(t, http.MethodPut, "/api/admin/drivers/no-such-id", map[string]string{
		"status": domain.DriverAway,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestBusinessInfoLifecycle(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	resp := ts.do(t, http.MethodPost, "/api/admin/business", map[string]string{
		"category": "שעות פתיחה",
		"question": "מתי אתם פתוחים",
		"answer":   "ימים א-ה 06:00-17:00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.BusinessInfo](t, resp)
	require.NotEmpty(t, created.ID)

	resp = ts.do(t, http.MethodPut, "/api/admin/business/"+created.ID, map[string]string{
		"category": "שעות פתיחה",
		"question": "מתי אתם פתוחים",
		"answer":   "ימים א-ה 06:00-18:00, ו' עד 13:00",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/api/admin/business", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[[]domain.BusinessInfo](t, resp)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Answer, "18:00")

	resp = ts.do(t, http.MethodDelete, "/api/admin/business/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestCacheAdminAfterResolve(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	resp := ts.do(t, http.MethodPost, "/api/ask", map[string]string{"query": "80 מטר"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/api/admin/cache", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[[]domain.CachedAnswer](t, resp)
	require.Len(t, entries, 1)
	key := entries[0].Key
	assert.Len(t, key, 64)

	resp = ts.do(t, http.MethodDelete, "/api/admin/cache/"+key, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodDelete, "/api/admin/cache/"+key, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestHistoryListsResolvedQueries(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	for i := 0; i < 3; i++ {
		resp := ts.do(t, http.MethodPost, "/api/ask", map[string]string{
			"query": fmt.Sprintf("%d0 מטר", i+5),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp := ts.do(t, http.MethodGet, "/api/admin/history?limit=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[[]domain.ChatEntry](t, resp)
	assert.Len(t, entries, 2)
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t, &stubModel{})

	resp := ts.do(t, http.MethodGet, "/api/check", nil)
	defer resp.Body.Close()
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}
