package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhome/storefront/internal/domain/catalog"
	"github.com/atelierhome/storefront/internal/domain/order"
	"github.com/atelierhome/storefront/internal/storage/imagestore"
	"github.com/atelierhome/storefront/internal/telegram"
)

// --- Mocks ---

type mockStore struct {
	catalog    *catalog.Catalog
	loadErr    error
	replaceErr error
	replaced   *catalog.Catalog
}

func (m *mockStore) Load(context.Context) (*catalog.Catalog, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.catalog, nil
}

func (m *mockStore) Replace(_ context.Context, c *catalog.Catalog) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	if c.Products == nil {
		return catalog.ErrNilProducts
	}
	m.replaced = c
	return nil
}

type mockImages struct {
	url string
	err error
}

func (m *mockImages) SaveDataURL(string) (string, error) {
	return m.url, m.err
}

type mockSink struct {
	err        error
	configured bool
	sent       []string
}

func (m *mockSink) Send(_ context.Context, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, text)
	return nil
}

func (m *mockSink) Configured() bool { return m.configured }

// --- Helpers ---

type env struct {
	h      *Handler
	store  *mockStore
	images *mockImages
	sink   *mockSink
	srv    *httptest.Server
}

func newEnv(t *testing.T, cfg Config) *env {
	t.Helper()

	store := &mockStore{catalog: &catalog.Catalog{
		Brand: catalog.Brand{Currency: "грн", GlobalMarkupPercent: 10},
		Products: []catalog.Product{
			{ID: "p1", Slug: "sofa-verona", Category: catalog.CategorySofa, Name: "Sofa Verona", BasePrice: 100, DiscountPercent: 20},
		},
	}}
	images := &mockImages{url: "/uploads/test.png"}
	sink := &mockSink{configured: true}

	h := New(cfg, store, images, order.NewService(sink), sink)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	return &env{h: h, store: store, images: images, sink: sink, srv: srv}
}

func (e *env) do(t *testing.T, method, path string, body any, header map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func adminHeader(pass string) map[string]string {
	return map[string]string{adminPassHeader: pass}
}

// --- Public endpoints ---

func TestCatalog_ProjectsPrices(t *testing.T) {
	e := newEnv(t, Config{AdminPass: "s3cret"})

	resp, body := e.do(t, http.MethodGet, "/api/catalog", nil, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	products := body["products"].([]any)
	require.Len(t, products, 1)
	p := products[0].(map[string]any)
	assert.Equal(t, float64(88), p["priceFinal"])
	assert.Equal(t, float64(100), p["basePrice"], "stored fields pass through")
}

func TestCatalog_StoreFailure(t *testing.T) {
	e := newEnv(t, Config{})
	e.store.loadErr = errors.New("disk error")

	resp, body := e.do(t, http.MethodGet, "/api/catalog", nil, nil)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "catalog_unavailable", body["error"])
}

func TestDiagnostics(t *testing.T) {
	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html/>"), 0o644))
	e := newEnv(t, Config{AdminPass: "s3cret", ClientDist: dist})

	resp, body := e.do(t, http.MethodGet, "/api/health", nil, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, true, body["hasTelegram"])
	assert.Equal(t, true, body["hasAdminPass"])
	assert.Equal(t, true, body["hasClientDist"])
}

// --- Admin gate ---

func TestAdmin_SecretNotConfigured(t *testing.T) {
	e := newEnv(t, Config{AdminPass: ""})

	resp, body := e.do(t, http.MethodGet, "/api/admin/catalog", nil, adminHeader("anything"))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "admin_pass_not_set", body["error"])
}

func TestAdmin_WrongSecret(t *testing.T) {
	e := newEnv(t, Config{AdminPass: "s3cret"})

	for _, pass := range []string{"", "wrong", "s3cret "} {
		resp, body := e.do(t, http.MethodGet, "/api/admin/catalog", nil, adminHeader(pass))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "forbidden", body["error"])
	}
}

func TestAdminCatalog_ReturnsRawDocument(t *testing.T) {
	e := newEnv(t, Config{AdminPass: "s3cret"})

	resp, body := e.do(t, http.MethodGet, "/api/admin/catalog", nil, adminHeader("s3cret"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := body["products"].([]any)[0].(map[string]any)
	_, projected := p["priceFinal"]
	assert.False(t, projected, "admin view must not carry derived prices")
}

// --- Catalog replace ---

func TestAdminReplaceCatalog(t *testing.T) {
	e := newEnv(t, Config{AdminPass: "s3cret"})

	doc := map[string]any{
		"brand":    map[string]any{"currency": "грн", "globalMarkupPercent": 15},
		"products": []any{map[string]any{"id": "p2", "name": "Oak table", "basePrice": 900}},
	}
	resp, body := e.do(t, http.MethodPost, "/api/admin/catalog", doc, adminHeader("s3cret"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	require.NotNil(t, e.store.replaced)
	assert.Equal(t, int64(15), e.store.replaced.Brand.GlobalMarkupPercent)
	require.Len(t, e.store.replaced.Products, 1)
	assert.Equal(t, "p2", e.store.replaced.Products[0].ID)
}

func TestAdminReplaceCatalog_ShapeRejections(t *testing.T) {
	e := newEnv(t, Config{AdminPass: "s3cret"})

	tests := []struct {
		name     string
		raw      string
		wantCode string
	}{
		{"not json", "not json", "bad_body"},
		{"array body", `[1,2,3]`, "bad_body"},
		{"missing products", `{"brand":{}}`, "products_required"},
		{"products is an object", `{"products":{}}`, "products_required"},
		{"products is a string", `{"products":"nope"}`, "products_required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/admin/catalog", bytes.NewBufferString(tt.raw))
			require.NoError(t, err)
			req.Header.Set(adminPassHeader, "s3cret")
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.wantCode, body["error"])
			assert.Nil(t, e.store.replaced, "rejected documents must not be written")
		})
	}
}

// --- Upload ---

func TestAdminUpload(t *testing.T) {
	e := newEnv(t, Config{AdminPass: "s3cret"})

	payload := map[string]string{
		"dataUrl": "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{1, 2, 3}),
	}
	resp, body := e.do(t, http.MethodPost, "/api/admin/upload", payload, adminHeader("s3cret"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/uploads/test.png", body["url"])
}

func TestAdminUpload_InvalidDataURL(t *testing.T) {
	e := newEnv(t, Config{AdminPass: "s3cret"})
	e.images.err = imagestore.ErrInvalidDataURL

	resp, body := e.do(t, http.MethodPost, "/api/admin/upload",
		map[string]string{"dataUrl": "https://not-a-data-url"}, adminHeader("s3cret"))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_dataUrl", body["error"])
}

// --- Orders ---

func orderPayload() map[string]any {
	return map[string]any{
		"customer": map[string]string{
			"name": "Олександр", "phone": "+380501234567",
			"city": "Київ", "npBranch": "12", "payment": "cod",
		},
		"items": []map[string]any{
			{"id": "p1", "name": "Sofa Verona", "size": "M", "color": "Red", "material": "Wood", "availability": "in", "price": 50, "qty": 2},
		},
		"siteUrl": "https://shop.example/",
	}
}

func TestPlaceOrder_OK(t *testing.T) {
	e := newEnv(t, Config{})

	resp, body := e.do(t, http.MethodPost, "/api/order", orderPayload(), nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["orderId"])
	require.Len(t, e.sink.sent, 1)
	assert.Contains(t, e.sink.sent[0], "Sofa Verona")
	assert.Contains(t, e.sink.sent[0], "Разом: 100 грн")
}

func TestPlaceOrder_NormalizesItemsThroughCart(t *testing.T) {
	e := newEnv(t, Config{})

	payload := orderPayload()
	// Duplicate variant line plus an out-of-range quantity.
	payload["items"] = []map[string]any{
		{"id": "p1", "name": "Sofa", "size": "M", "color": "Red", "material": "Wood", "price": 50, "qty": 98},
		{"id": "p1", "name": "Sofa", "size": "M", "color": "Red", "material": "Wood", "price": 50, "qty": 5},
	}
	resp, _ := e.do(t, http.MethodPost, "/api/order", payload, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, e.sink.sent, 1)
	assert.Contains(t, e.sink.sent[0], "× 99 =", "qty capped at 99, lines merged")
	assert.NotContains(t, e.sink.sent[0], "2)")
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	e := newEnv(t, Config{})

	payload := orderPayload()
	payload["items"] = []any{}
	resp, body := e.do(t, http.MethodPost, "/api/order", payload, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "empty_cart", body["error"])
	assert.Empty(t, e.sink.sent)
}

func TestPlaceOrder_InvalidCustomer(t *testing.T) {
	e := newEnv(t, Config{})

	payload := orderPayload()
	payload["customer"] = map[string]string{"name": "A"}
	resp, body := e.do(t, http.MethodPost, "/api/order", payload, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_customer", body["error"])
	fields := body["fields"].(map[string]any)
	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "city")
	assert.Contains(t, fields, "npBranch")
}

func TestPlaceOrder_SinkFailure(t *testing.T) {
	e := newEnv(t, Config{})
	e.sink.err = errors.New("telegram down")

	resp, body := e.do(t, http.MethodPost, "/api/order", orderPayload(), nil)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "send_failed", body["error"])
}

func TestPlaceOrder_SinkNotConfigured(t *testing.T) {
	e := newEnv(t, Config{})
	e.sink.err = telegram.ErrNotConfigured

	resp, body := e.do(t, http.MethodPost, "/api/order", orderPayload(), nil)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "not_configured", body["error"])
}

// --- Test-telegram ---

func TestTestTelegram(t *testing.T) {
	e := newEnv(t, Config{AdminPass: "s3cret"})

	resp, body := e.do(t, http.MethodPost, "/api/test-telegram", map[string]string{}, adminHeader("s3cret"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	require.Len(t, e.sink.sent, 1)
	assert.Equal(t, "✅ TEST OK", e.sink.sent[0])
}

func TestTestTelegram_CustomText(t *testing.T) {
	e := newEnv(t, Config{AdminPass: "s3cret"})

	resp, _ := e.do(t, http.MethodPost, "/api/test-telegram", map[string]string{"text": "ping"}, adminHeader("s3cret"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, e.sink.sent, 1)
	assert.Equal(t, "ping", e.sink.sent[0])
}

func TestTestTelegram_RequiresAdmin(t *testing.T) {
	e := newEnv(t, Config{AdminPass: "s3cret"})

	resp, _ := e.do(t, http.MethodPost, "/api/test-telegram", nil, nil)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, e.sink.sent)
}
