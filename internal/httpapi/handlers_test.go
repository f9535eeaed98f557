package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"minimercado/backend/internal/domain"
	"minimercado/backend/internal/metrics"
	"minimercado/backend/internal/service"
	"minimercado/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	hash := mustHashPassword(t, "123")
	creds := []service.Credential{
		{Email: "admin@market.com", PasswordHash: hash, User: domain.User{ID: "1", Name: "Admin", Email: "admin@market.com", Role: domain.RoleAdmin}},
		{Email: "op@market.com", PasswordHash: hash, User: domain.User{ID: "2", Name: "Operador", Email: "op@market.com", Role: domain.RoleOperator}},
	}
	svc, err := service.New(context.Background(), memory.New(), service.Options{
		Credentials: creds,
		Logger:      zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	auth := NewAuthManager("test-secret-key", time.Hour)

	return New(svc, auth, "*", zerolog.Nop(), metrics.New())
}

// mustHashPassword generates a bcrypt hash of the given password or fails the test.
func mustHashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func login(t *testing.T, api *API, email string) string {
	t.Helper()

	body, _ := json.Marshal(domain.LoginRequest{Email: email, Password: "123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("login as %s failed, status %d: %s", email, res.Code, res.Body.String())
	}

	var payload domain.LoginResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response failed: %v", err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		t.Fatalf("expected access token in login response")
	}
	return payload.AccessToken
}

// call performs an authenticated request, attaching a CSRF token to mutations.
func call(t *testing.T, api *API, method string, path string, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method != http.MethodGet {
		req.Header.Set("X-CSRF-Token", fetchCSRFToken(t, api))
	}
	res := httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)
	return res
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	api := newTestAPI(t)

	token := login(t, api, "admin@market.com")
	if _, err := api.auth.ParseToken(token); err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}

	rec := call(t, api, http.MethodGet, "/api/v1/auth/session", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var body struct {
		State string       `json:"state"`
		User  *domain.User `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.State != string(service.Authenticated) || body.User == nil || body.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected session payload: %+v", body)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"email":    "admin@market.com",
		"password": "wrongpassword",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleProducts_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)

	rec := call(t, api, http.MethodGet, "/api/v1/products", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleProducts_SearchAndBarcode(t *testing.T) {
	api := newTestAPI(t)
	token := login(t, api, "op@market.com")

	rec := call(t, api, http.MethodGet, "/api/v1/products?q=alimentos", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var list struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(list.Products) != 2 {
		t.Fatalf("expected 2 products in category, got %d", len(list.Products))
	}

	rec = call(t, api, http.MethodGet, "/api/v1/products/barcode/789123458", token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Coca-Cola 2L") {
		t.Fatalf("barcode lookup failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = call(t, api, http.MethodGet, "/api/v1/products/barcode/000", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown barcode, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodGet, "/api/v1/products/low-stock", token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "789123457") {
		t.Fatalf("low-stock listing failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestOperatorCannotManageCatalog(t *testing.T) {
	api := newTestAPI(t)
	token := login(t, api, "op@market.com")

	product := domain.Product{Barcode: "555", Name: "Leite 1L", SellPrice: decimal.RequireFromString("5.50")}
	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/v1/products", product},
		{http.MethodPut, "/api/v1/products/1", product},
		{http.MethodDelete, "/api/v1/products/1", nil},
		{http.MethodPost, "/api/v1/suppliers", domain.Supplier{Name: "Atacadão"}},
		{http.MethodGet, "/api/v1/purchases", nil},
		{http.MethodGet, "/api/v1/reports/sales.xlsx", nil},
	}
	for _, tc := range cases {
		rec := call(t, api, tc.method, tc.path, token, tc.body)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403, got %d (body: %s)", tc.method, tc.path, rec.Code, rec.Body.String())
		}
	}
}

func TestAdminProductLifecycle(t *testing.T) {
	api := newTestAPI(t)
	token := login(t, api, "admin@market.com")

	rec := call(t, api, http.MethodPost, "/api/v1/products", token, domain.Product{
		Barcode:   "555",
		Name:      "Leite 1L",
		SellPrice: decimal.RequireFromString("5.50"),
		Stock:     decimal.NewFromInt(12),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var created struct {
		Product domain.Product `json:"product"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	rec = call(t, api, http.MethodPost, "/api/v1/products", token, domain.Product{Barcode: "555", Name: "Duplicado"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate barcode, got %d", rec.Code)
	}

	updated := created.Product
	updated.SellPrice = decimal.RequireFromString("6")
	rec = call(t, api, http.MethodPut, "/api/v1/products/"+created.Product.ID, token, updated)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = call(t, api, http.MethodPut, "/api/v1/products/missing", token, updated)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on update of unknown id, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodDelete, "/api/v1/products/"+created.Product.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", rec.Code)
	}
	rec = call(t, api, http.MethodDelete, "/api/v1/products/"+created.Product.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestSaleDrawerAndReceiptFlow(t *testing.T) {
	api := newTestAPI(t)
	token := login(t, api, "op@market.com")

	rec := call(t, api, http.MethodPost, "/api/v1/cash/movements", token, domain.CashMovementRequest{
		Type:        domain.CashOpen,
		Amount:      decimal.NewFromInt(100),
		Description: "abertura",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open drawer: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = call(t, api, http.MethodPost, "/api/v1/sales", token, domain.SaleRequest{
		Items:         []domain.SaleLineRequest{{Barcode: "789123456", Quantity: decimal.NewFromInt(2)}},
		PaymentMethod: domain.PaymentCash,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("sale: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var committed struct {
		Sale domain.Sale `json:"sale"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&committed); err != nil {
		t.Fatalf("decode sale: %v", err)
	}
	if !committed.Sale.Total.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected total 50, got %s", committed.Sale.Total)
	}
	if committed.Sale.OperatorID != "2" {
		t.Fatalf("expected operator 2, got %q", committed.Sale.OperatorID)
	}

	rec = call(t, api, http.MethodPost, "/api/v1/cash/movements", token, domain.CashMovementRequest{
		Type:   domain.CashBleed,
		Amount: decimal.NewFromInt(20),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("bleed: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = call(t, api, http.MethodGet, "/api/v1/cash/balance", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance: expected 200, got %d", rec.Code)
	}
	var summary domain.DrawerSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if !summary.Balance.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("expected balance 130, got %s", summary.Balance)
	}

	rec = call(t, api, http.MethodGet, "/api/v1/cash/balance?date=20-05-2024", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed date, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodGet, "/api/v1/sales/"+committed.Sale.ID+"/receipt", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("receipt: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain receipt, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Arroz 5kg") {
		t.Fatalf("receipt is missing the item line:\n%s", rec.Body.String())
	}

	rec = call(t, api, http.MethodGet, "/api/v1/sales/missing/receipt", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown sale receipt, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodGet, "/api/v1/products/1", token, nil)
	if !strings.Contains(rec.Body.String(), `"stock":"48"`) {
		t.Fatalf("expected stock 48 after sale, got %s", rec.Body.String())
	}
}

func TestSaleValidationReturns400(t *testing.T) {
	api := newTestAPI(t)
	token := login(t, api, "op@market.com")

	rec := call(t, api, http.MethodPost, "/api/v1/sales", token, domain.SaleRequest{PaymentMethod: domain.PaymentPix})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = call(t, api, http.MethodGet, "/api/v1/sales", token, nil)
	if strings.Contains(rec.Body.String(), `"id"`) {
		t.Fatalf("rejected sale must not be recorded: %s", rec.Body.String())
	}
}

func TestAdminPurchaseAndReports(t *testing.T) {
	api := newTestAPI(t)
	token := login(t, api, "admin@market.com")

	rec := call(t, api, http.MethodPost, "/api/v1/suppliers", token, domain.Supplier{Name: "Atacadão"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("supplier: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var created struct {
		Supplier domain.Supplier `json:"supplier"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode supplier: %v", err)
	}

	rec = call(t, api, http.MethodPost, "/api/v1/purchases", token, domain.PurchaseRequest{
		SupplierID: created.Supplier.ID,
		Items: []domain.PurchaseLineRequest{
			{ProductID: "2", Quantity: decimal.NewFromInt(20), UnitCost: decimal.RequireFromString("5.5")},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("purchase: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = call(t, api, http.MethodGet, "/api/v1/reports/stock", token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Atacadão") {
		t.Fatalf("stock report should name the last supplier: %d %s", rec.Code, rec.Body.String())
	}

	rec = call(t, api, http.MethodGet, "/api/v1/reports/dashboard", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rec.Code)
	}
	var dash domain.DashboardSummary
	if err := json.NewDecoder(rec.Body).Decode(&dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if !dash.TotalPurchases.Equal(decimal.NewFromInt(110)) {
		t.Fatalf("expected purchases 110, got %s", dash.TotalPurchases)
	}
	if len(dash.LastSevenDays) != 7 {
		t.Fatalf("expected 7 trend buckets, got %d", len(dash.LastSevenDays))
	}

	rec = call(t, api, http.MethodGet, "/api/v1/reports/sales.xlsx", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "vendas-") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatalf("expected a zip container")
	}
}

func TestDeleteCustomerRequiresAdmin(t *testing.T) {
	api := newTestAPI(t)
	token := login(t, api, "op@market.com")

	rec := call(t, api, http.MethodPost, "/api/v1/customers", token, domain.Customer{Name: "Maria"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("customer: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var created struct {
		Customer domain.Customer `json:"customer"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode customer: %v", err)
	}

	rec = call(t, api, http.MethodDelete, "/api/v1/customers/"+created.Customer.ID, token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for operator delete, got %d", rec.Code)
	}

	admin := login(t, api, "admin@market.com")
	rec = call(t, api, http.MethodDelete, "/api/v1/customers/"+created.Customer.ID, admin, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for admin delete, got %d", rec.Code)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	api := newTestAPI(t)
	token := login(t, api, "admin@market.com")

	rec := call(t, api, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodGet, "/api/v1/products", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestNewLoginSupersedesPreviousToken(t *testing.T) {
	api := newTestAPI(t)
	first := login(t, api, "admin@market.com")
	second := login(t, api, "op@market.com")

	if rec := call(t, api, http.MethodGet, "/api/v1/products", first, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for the superseded token, got %d", rec.Code)
	}
	if rec := call(t, api, http.MethodGet, "/api/v1/products", second, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for the current token, got %d", rec.Code)
	}
}

func TestMetricsEndpointCountsSales(t *testing.T) {
	api := newTestAPI(t)
	token := login(t, api, "op@market.com")

	rec := call(t, api, http.MethodPost, "/api/v1/sales", token, domain.SaleRequest{
		Items:         []domain.SaleLineRequest{{ProductID: "3", Quantity: decimal.NewFromInt(1)}},
		PaymentMethod: domain.PaymentPix,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("sale: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	res := httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "minimercado_http_request_duration_seconds") {
		t.Fatalf("expected request histogram in exposition")
	}
}

func TestCashMovementTypeIsCaseInsensitive(t *testing.T) {
	api := newTestAPI(t)
	token := login(t, api, "op@market.com")

	for _, body := range []string{
		`{"type":"open","amount":"100","description":"abertura"}`,
		`{"type":"bleed","amount":"20","description":"sangria"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cash/movements", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-CSRF-Token", fetchCSRFToken(t, api))
		res := httptest.NewRecorder()

		api.Handler().ServeHTTP(res, req)

		if res.Code != http.StatusCreated {
			t.Fatalf("%s: expected 201, got %d (body: %s)", body, res.Code, res.Body.String())
		}
	}

	rec := call(t, api, http.MethodGet, "/api/v1/cash/balance", token, nil)
	var summary domain.DrawerSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if !summary.Balance.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected balance 80, got %s", summary.Balance)
	}
}
