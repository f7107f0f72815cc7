package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/linemk/storefront/internal/app/handlers"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthService — фиктивная реализация для тестирования.
type fakeAuthService struct {
	res  *service.AuthResult
	user *models.User
	err  error
}

func (f *fakeAuthService) Signup(ctx context.Context, name, email, password string) (*service.AuthResult, error) {
	return f.res, f.err
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	return f.res, f.err
}

func (f *fakeAuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return f.user, f.err
}

// fakeProductService запоминает последние аргументы
type fakeProductService struct {
	products []*models.Product
	product  *models.Product
	err      error

	gotCategory models.Category
	gotAdmin    uuid.UUID
	gotInput    service.ProductInput
	gotPatch    service.ProductPatch
}

func (f *fakeProductService) List(ctx context.Context, category models.Category) ([]*models.Product, error) {
	f.gotCategory = category
	return f.products, f.err
}

func (f *fakeProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return f.product, f.err
}

func (f *fakeProductService) Create(ctx context.Context, adminID uuid.UUID, in service.ProductInput) (*models.Product, error) {
	f.gotAdmin = adminID
	f.gotInput = in
	return f.product, f.err
}

func (f *fakeProductService) Update(ctx context.Context, id uuid.UUID, patch service.ProductPatch) (*models.Product, error) {
	f.gotPatch = patch
	return f.product, f.err
}

func (f *fakeProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return f.err
}

type fakeOrderService struct {
	order  *models.Order
	orders []*models.Order
	err    error

	gotUser   uuid.UUID
	gotInput  service.PlaceOrderInput
	gotStatus models.OrderStatus
	called    bool
}

func (f *fakeOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, in service.PlaceOrderInput) (*models.Order, error) {
	f.called = true
	f.gotUser = userID
	f.gotInput = in
	return f.order, f.err
}

func (f *fakeOrderService) GetMyOrders(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	f.gotUser = userID
	return f.orders, f.err
}

func (f *fakeOrderService) GetOrders(ctx context.Context) ([]*models.Order, error) {
	return f.orders, f.err
}

func (f *fakeOrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	f.called = true
	f.gotStatus = status
	return f.order, f.err
}

type fakeUploadService struct {
	urls  []string
	err   error
	names []string
}

func (f *fakeUploadService) Upload(ctx context.Context, file service.File) (string, error) {
	f.names = append(f.names, file.Name)
	if f.err != nil {
		return "", f.err
	}
	return f.urls[0], nil
}

func (f *fakeUploadService) UploadMany(ctx context.Context, files []service.File) ([]string, error) {
	for _, file := range files {
		f.names = append(f.names, file.Name)
	}
	return f.urls, f.err
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	File    string          `json:"file"`
	Files   []string        `json:"files"`
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp), "Response decoding should succeed")
	return resp
}

func withIdentity(req *http.Request, userID uuid.UUID, role models.Role) *http.Request {
	ctx := jwtmiddleware.WithIdentity(req.Context(), jwtmiddleware.Identity{UserID: userID, Role: role})
	return req.WithContext(ctx)
}

// withURLParam имитирует параметр пути chi
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestSignupHandler_Success(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Ann", Email: "ann@example.com", Role: models.RoleCustomer}
	fakeSvc := &fakeAuthService{res: &service.AuthResult{User: user, Token: "test-token"}}
	handler := handlers.SignupHandler(testLogger(), fakeSvc)

	reqBody := `{"name":"Ann","email":"ann@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	resp := decodeEnvelope(t, rr)
	assert.True(t, resp.Success)

	var data handlers.AuthResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "test-token", data.Token)
	assert.Equal(t, user.Email, data.User.Email)
}

func TestSignupHandler_ValidationError(t *testing.T) {
	fakeSvc := &fakeAuthService{}
	handler := handlers.SignupHandler(testLogger(), fakeSvc)

	reqBody := `{"name":"","email":"not-an-email","password":"123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeEnvelope(t, rr)
	assert.False(t, resp.Success)
	assert.Len(t, resp.Errors, 3)
}

func TestSignupHandler_EmailTooLong(t *testing.T) {
	fakeSvc := &fakeAuthService{}
	handler := handlers.SignupHandler(testLogger(), fakeSvc)

	email := strings.Repeat("a", 250) + "@example.com"
	reqBody := `{"name":"Ann","email":"` + email + `","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeEnvelope(t, rr)
	assert.Contains(t, resp.Errors, "email must be at most 255 characters long")
}

func TestSignupHandler_UserExists(t *testing.T) {
	fakeSvc := &fakeAuthService{err: fmt.Errorf("auth.Signup: %w", storage.ErrUserExists)}
	handler := handlers.SignupHandler(testLogger(), fakeSvc)

	reqBody := `{"name":"Ann","email":"ann@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestLoginHandler_InvalidJSON(t *testing.T) {
	fakeSvc := &fakeAuthService{}
	handler := handlers.LoginHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"email": "a@b.c", "password":`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for invalid JSON")
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	fakeSvc := &fakeAuthService{err: fmt.Errorf("auth.Login: %w", service.ErrInvalidCredentials)}
	handler := handlers.LoginHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"email":"a@b.cd","password":"x"}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMeHandler_NoIdentity(t *testing.T) {
	handler := handlers.MeHandler(testLogger(), &fakeAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListProductsHandler(t *testing.T) {
	products := []*models.Product{
		{ID: uuid.New(), Name: "Phone", Category: models.CategoryElectronics},
		{ID: uuid.New(), Name: "Laptop", Category: models.CategoryElectronics},
	}

	t.Run("filters by category", func(t *testing.T) {
		fakeSvc := &fakeProductService{products: products}
		handler := handlers.ListProductsHandler(testLogger(), fakeSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/products?category=Electronics", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeEnvelope(t, rr)
		require.NotNil(t, resp.Count)
		assert.Equal(t, 2, *resp.Count)
		assert.Equal(t, models.CategoryElectronics, fakeSvc.gotCategory)
	})

	t.Run("unknown category", func(t *testing.T) {
		fakeSvc := &fakeProductService{products: products}
		handler := handlers.ListProductsHandler(testLogger(), fakeSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/products?category=Toys", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty catalog", func(t *testing.T) {
		fakeSvc := &fakeProductService{products: []*models.Product{}}
		handler := handlers.ListProductsHandler(testLogger(), fakeSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeEnvelope(t, rr)
		require.NotNil(t, resp.Count)
		assert.Equal(t, 0, *resp.Count)
	})
}

func TestGetProductHandler(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		wantStatus int
	}{
		{name: "found", id: uuid.NewString(), wantStatus: http.StatusOK},
		{name: "not found", id: uuid.NewString(), err: fmt.Errorf("get: %w", storage.ErrProductNotFound), wantStatus: http.StatusNotFound},
		{name: "malformed id", id: "42", wantStatus: http.StatusBadRequest},
		{name: "server error", id: uuid.NewString(), err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeSvc := &fakeProductService{product: &models.Product{Name: "Phone"}, err: tt.err}
			handler := handlers.GetProductHandler(testLogger(), fakeSvc)

			req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/"+tt.id, nil), "id", tt.id)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestCreateProductHandler_Success(t *testing.T) {
	adminID := uuid.New()
	fakeSvc := &fakeProductService{product: &models.Product{ID: uuid.New(), Name: "Phone"}}
	handler := handlers.CreateProductHandler(testLogger(), fakeSvc)

	reqBody := `{"name":"Phone","description":"Smart","price":199.99,"category":"Electronics","stock":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString(reqBody))
	req = withIdentity(req, adminID, models.RoleAdmin)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, adminID, fakeSvc.gotAdmin)
	assert.True(t, decimal.RequireFromString("199.99").Equal(fakeSvc.gotInput.Price))
	assert.Equal(t, 3, fakeSvc.gotInput.Stock)
}

func TestCreateProductHandler_Invalid(t *testing.T) {
	fakeSvc := &fakeProductService{}
	handler := handlers.CreateProductHandler(testLogger(), fakeSvc)

	reqBody := `{"name":"Phone","description":"Smart","price":-1,"category":"Toys","stock":-2}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString(reqBody))
	req = withIdentity(req, uuid.New(), models.RoleAdmin)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeEnvelope(t, rr)
	assert.Len(t, resp.Errors, 3)
	assert.Equal(t, uuid.Nil, fakeSvc.gotAdmin, "service must not be called")
}

func TestCreateProductHandler_OutOfColumnRange(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "price too large", body: `{"name":"Phone","description":"Smart","price":100000000000,"category":"Electronics","stock":1}`},
		{name: "price with three decimals", body: `{"name":"Phone","description":"Smart","price":9.999,"category":"Electronics","stock":1}`},
		{name: "stock too large", body: `{"name":"Phone","description":"Smart","price":9.99,"category":"Electronics","stock":3000000000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeSvc := &fakeProductService{}
			handler := handlers.CreateProductHandler(testLogger(), fakeSvc)

			req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString(tt.body))
			req = withIdentity(req, uuid.New(), models.RoleAdmin)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			resp := decodeEnvelope(t, rr)
			assert.Len(t, resp.Errors, 1)
			assert.Equal(t, uuid.Nil, fakeSvc.gotAdmin, "service must not be called")
		})
	}
}

func TestUpdateProductHandler_PriceScale(t *testing.T) {
	id := uuid.New()
	fakeSvc := &fakeProductService{}
	handler := handlers.UpdateProductHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest(http.MethodPut, "/api/products/"+id.String(), bytes.NewBufferString(`{"price":1.005}`))
	req = withURLParam(req, "id", id.String())
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Nil(t, fakeSvc.gotPatch.Price, "service must not be called")
}

func TestUpdateProductHandler_PartialPatch(t *testing.T) {
	id := uuid.New()
	fakeSvc := &fakeProductService{product: &models.Product{ID: id, Stock: 7}}
	handler := handlers.UpdateProductHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest(http.MethodPut, "/api/products/"+id.String(), bytes.NewBufferString(`{"stock":7}`))
	req = withURLParam(req, "id", id.String())
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, fakeSvc.gotPatch.Stock)
	assert.Equal(t, 7, *fakeSvc.gotPatch.Stock)
	assert.Nil(t, fakeSvc.gotPatch.Name)
	assert.Nil(t, fakeSvc.gotPatch.Price)
}

func TestDeleteProductHandler(t *testing.T) {
	id := uuid.New()
	fakeSvc := &fakeProductService{}
	handler := handlers.DeleteProductHandler(testLogger(), fakeSvc)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/products/"+id.String(), nil), "id", id.String())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeEnvelope(t, rr)
	assert.True(t, resp.Success)
	assert.Equal(t, "Product removed", resp.Message)
}

const validOrderBody = `{
	"orderItems": [{"product": "%s", "name": "Phone", "qty": 2, "price": 10}],
	"shippingAddress": {"address": "1 Main St", "city": "Springfield", "postalCode": "12345", "country": "US"},
	"totalPrice": 20
}`

func TestPlaceOrderHandler_Success(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	fakeSvc := &fakeOrderService{order: &models.Order{ID: uuid.New(), UserID: userID, Status: models.StatusPending}}
	handler := handlers.PlaceOrderHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(fmt.Sprintf(validOrderBody, productID)))
	req = withIdentity(req, userID, models.RoleCustomer)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, userID, fakeSvc.gotUser)
	require.Len(t, fakeSvc.gotInput.Items, 1)
	assert.Equal(t, productID, fakeSvc.gotInput.Items[0].ProductID)
	assert.Equal(t, 2, fakeSvc.gotInput.Items[0].Qty)
	assert.Equal(t, "Springfield", fakeSvc.gotInput.ShippingAddress.City)
}

func TestPlaceOrderHandler_StockError(t *testing.T) {
	fakeSvc := &fakeOrderService{err: &service.StockError{Items: []string{`"A" only has 3 left in stock (you requested 5).`}}}
	handler := handlers.PlaceOrderHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(fmt.Sprintf(validOrderBody, uuid.New())))
	req = withIdentity(req, uuid.New(), models.RoleCustomer)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeEnvelope(t, rr)
	assert.False(t, resp.Success)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "3 left in stock (you requested 5)")
}

func TestPlaceOrderHandler_EmptyItems(t *testing.T) {
	fakeSvc := &fakeOrderService{err: service.NewValidationError("No order items provided")}
	handler := handlers.PlaceOrderHandler(testLogger(), fakeSvc)

	reqBody := `{"orderItems": [], "shippingAddress": {"address": "a", "city": "b", "postalCode": "c", "country": "d"}, "totalPrice": 0}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(reqBody))
	req = withIdentity(req, uuid.New(), models.RoleCustomer)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeEnvelope(t, rr)
	assert.Equal(t, "No order items provided", resp.Message)
}

func TestPlaceOrderHandler_InvalidItems(t *testing.T) {
	fakeSvc := &fakeOrderService{}
	handler := handlers.PlaceOrderHandler(testLogger(), fakeSvc)

	reqBody := `{"orderItems": [{"product": "nope", "name": "x", "qty": 0}], "shippingAddress": {"address": "a", "city": "b", "postalCode": "c", "country": "d"}, "totalPrice": 0}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(reqBody))
	req = withIdentity(req, uuid.New(), models.RoleCustomer)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, fakeSvc.called, "service must not be called")
}

func TestPlaceOrderHandler_TotalPriceScale(t *testing.T) {
	fakeSvc := &fakeOrderService{}
	handler := handlers.PlaceOrderHandler(testLogger(), fakeSvc)

	reqBody := fmt.Sprintf(`{
		"orderItems": [{"product": "%s", "name": "Phone", "qty": 1}],
		"shippingAddress": {"address": "a", "city": "b", "postalCode": "c", "country": "d"},
		"totalPrice": 19.999
	}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(reqBody))
	req = withIdentity(req, uuid.New(), models.RoleCustomer)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, fakeSvc.called, "service must not be called")
}

func TestMyOrdersHandler(t *testing.T) {
	userID := uuid.New()
	fakeSvc := &fakeOrderService{orders: []*models.Order{{ID: uuid.New(), UserID: userID}}}
	handler := handlers.MyOrdersHandler(testLogger(), fakeSvc)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/orders/myorders", nil), userID, models.RoleCustomer)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, userID, fakeSvc.gotUser)
	resp := decodeEnvelope(t, rr)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 1, *resp.Count)
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCalled bool
	}{
		{name: "success", body: `{"status":"processing"}`, wantStatus: http.StatusOK, wantCalled: true},
		{name: "missing status", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "not found", body: `{"status":"processing"}`, err: fmt.Errorf("x: %w", storage.ErrOrderNotFound), wantStatus: http.StatusNotFound, wantCalled: true},
		{name: "illegal transition", body: `{"status":"pending"}`, err: fmt.Errorf("x: %w", service.ErrInvalidStatusTransition), wantStatus: http.StatusBadRequest, wantCalled: true},
		{name: "concurrent change", body: `{"status":"shipped"}`, err: fmt.Errorf("x: %w", storage.ErrOrderStatusChanged), wantStatus: http.StatusConflict, wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			fakeSvc := &fakeOrderService{order: &models.Order{ID: id, Status: models.StatusProcessing}, err: tt.err}
			handler := handlers.UpdateOrderStatusHandler(testLogger(), fakeSvc)

			req := httptest.NewRequest(http.MethodPut, "/api/orders/"+id.String()+"/status", bytes.NewBufferString(tt.body))
			req = withURLParam(req, "id", id.String())
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCalled, fakeSvc.called)
		})
	}
}

func multipartBody(t *testing.T, field string, names ...string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadHandler_Success(t *testing.T) {
	fakeSvc := &fakeUploadService{urls: []string{"https://cdn.example.com/a.png"}}
	handler := handlers.UploadHandler(testLogger(), fakeSvc)

	body, contentType := multipartBody(t, "image", "a.png")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeEnvelope(t, rr)
	assert.True(t, resp.Success)
	assert.Equal(t, "File uploaded successfully", resp.Message)
	assert.Equal(t, "https://cdn.example.com/a.png", resp.File)
	assert.Equal(t, []string{"a.png"}, fakeSvc.names)
}

func TestUploadHandler_NoFile(t *testing.T) {
	fakeSvc := &fakeUploadService{}
	handler := handlers.UploadHandler(testLogger(), fakeSvc)

	body, contentType := multipartBody(t, "other", "a.png")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeEnvelope(t, rr)
	assert.Equal(t, "No file uploaded", resp.Message)
	assert.Empty(t, fakeSvc.names)
}

func TestUploadHandler_Rejected(t *testing.T) {
	fakeSvc := &fakeUploadService{err: fmt.Errorf("upload: %w", service.ErrUnsupportedMediaType)}
	handler := handlers.UploadHandler(testLogger(), fakeSvc)

	body, contentType := multipartBody(t, "image", "a.txt")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadMultipleHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		urls := []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"}
		fakeSvc := &fakeUploadService{urls: urls}
		handler := handlers.UploadMultipleHandler(testLogger(), fakeSvc)

		body, contentType := multipartBody(t, "images", "a.png", "b.png")
		req := httptest.NewRequest(http.MethodPost, "/api/upload/multiple", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeEnvelope(t, rr)
		assert.Equal(t, urls, resp.Files)
		require.NotNil(t, resp.Count)
		assert.Equal(t, 2, *resp.Count)
	})

	t.Run("too many files", func(t *testing.T) {
		fakeSvc := &fakeUploadService{}
		handler := handlers.UploadMultipleHandler(testLogger(), fakeSvc)

		body, contentType := multipartBody(t, "images", "1.png", "2.png", "3.png", "4.png", "5.png", "6.png")
		req := httptest.NewRequest(http.MethodPost, "/api/upload/multiple", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, fakeSvc.names)
	})
}
