package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vinestore-be/internal/access"
	"vinestore-be/internal/apperr"
	"vinestore-be/internal/category"
	"vinestore-be/internal/item"
	"vinestore-be/internal/metrics"
	"vinestore-be/internal/order"
	"vinestore-be/internal/report"
	"vinestore-be/internal/storage"
	"vinestore-be/internal/user"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserService struct{ mock.Mock }

func (m *MockUserService) Login(ctx context.Context, email, password string) (*user.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.LoginResult), args.Error(1)
}

func (m *MockUserService) VerifyPermission(ctx context.Context, token string) (*user.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) UpdateByEmail(ctx context.Context, email string, params user.UpdateUserParams) (*user.User, error) {
	args := m.Called(ctx, email, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserService) ProvisionUser(ctx context.Context, email string) (*user.User, string, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*user.User), args.String(1), args.Error(2)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) Create(ctx context.Context, customerName string, lines []order.LineInput) (*order.Order, error) {
	args := m.Called(ctx, customerName, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Edit(ctx context.Context, orderID string, lines []order.LineInput) (*order.Order, error) {
	args := m.Called(ctx, orderID, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) SetPaymentStatus(ctx context.Context, orderID string, isPaid bool, paymentType *order.PaymentType) (*order.Order, error) {
	args := m.Called(ctx, orderID, isPaid, paymentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, orderID string) error {
	return m.Called(ctx, orderID).Error(0)
}

func (m *MockOrderService) Get(ctx context.Context, orderID string) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, params order.ListParams) (*order.ListResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ListResult), args.Error(1)
}

type MockCategoryService struct{ mock.Mock }

func (m *MockCategoryService) List(ctx context.Context) ([]*category.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*category.Category), args.Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, name string) (*category.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockItemService struct{ mock.Mock }

func (m *MockItemService) List(ctx context.Context) ([]*item.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*item.Item), args.Error(1)
}

func (m *MockItemService) Get(ctx context.Context, id string) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemService) Create(ctx context.Context, params item.CreateItemParams) (*item.Item, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemService) Update(ctx context.Context, params item.UpdateItemParams) (*item.Item, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockReportService struct{ mock.Mock }

func (m *MockReportService) Generate(ctx context.Context, month, year *int) (*report.Report, error) {
	args := m.Called(ctx, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

type MockAccessService struct{ mock.Mock }

func (m *MockAccessService) Submit(ctx context.Context, params access.SubmitParams) (*access.AccessRequest, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*access.AccessRequest), args.Error(1)
}

func (m *MockAccessService) List(ctx context.Context) ([]*access.AccessRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*access.AccessRequest), args.Error(1)
}

func (m *MockAccessService) Review(ctx context.Context, id, action string, adminNotes *string) (*access.ReviewResult, error) {
	args := m.Called(ctx, id, action, adminNotes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*access.ReviewResult), args.Error(1)
}

type testEnv struct {
	handler    http.Handler
	users      *MockUserService
	orders     *MockOrderService
	categories *MockCategoryService
	items      *MockItemService
	reports    *MockReportService
	access     *MockAccessService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.NewStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	env := &testEnv{
		users:      new(MockUserService),
		orders:     new(MockOrderService),
		categories: new(MockCategoryService),
		items:      new(MockItemService),
		reports:    new(MockReportService),
		access:     new(MockAccessService),
	}
	env.handler = NewHandler(
		env.categories, env.items, env.orders, env.reports,
		env.access, env.users, store, metrics.NewRegistry(),
	).Routes()
	return env
}

// grant makes every permission check pass for the given env.
func (e *testEnv) grant() {
	e.users.On("VerifyPermission", mock.Anything, "valid-token").
		Return(&user.User{Email: "staff@vinechurch.com", OrdersPermission: true}, nil)
}

func authed(r *http.Request) *http.Request {
	r.Header.Set("Authorization", "Bearer valid-token")
	return r
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestGating(t *testing.T) {
	t.Run("No token yields 401", func(t *testing.T) {
		env := newTestEnv(t)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "error")
	})

	t.Run("Permission refused yields 403", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.On("VerifyPermission", mock.Anything, "valid-token").
			Return(nil, apperr.New(apperr.Permission, "no permission"))

		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/orders", nil)))

		assert.Equal(t, http.StatusForbidden, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "no permission", body["error"])
	})

	t.Run("Access request submission is public", func(t *testing.T) {
		env := newTestEnv(t)
		env.access.On("Submit", mock.Anything, mock.Anything).
			Return(&access.AccessRequest{ID: "req-1", Status: access.StatusPending}, nil)

		payload := bytes.NewBufferString(`{"email":"a@b.com","full_name":"Pat"}`)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/access-requests", payload))

		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("Sets cookie on success", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.On("Login", mock.Anything, "staff@vinechurch.com", "pw").
			Return(&user.LoginResult{Token: "signed-token", User: &user.User{Email: "staff@vinechurch.com"}}, nil)

		payload := bytes.NewBufferString(`{"email":"staff@vinechurch.com","password":"pw"}`)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", payload))

		require.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "access_token", cookies[0].Name)
		assert.Equal(t, "signed-token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("Permission refusal leaves no cookie", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.On("Login", mock.Anything, "locked@vinechurch.com", "pw").
			Return(nil, apperr.New(apperr.Permission, "no permission"))

		payload := bytes.NewBufferString(`{"email":"locked@vinechurch.com","password":"pw"}`)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", payload))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestListOrdersParams(t *testing.T) {
	env := newTestEnv(t)
	env.grant()
	env.orders.On("List", mock.Anything, mock.MatchedBy(func(p order.ListParams) bool {
		return p.Page == 2 && p.Limit == 10 && p.UnpaidOnly &&
			p.CustomerName == "josé" &&
			p.SortBy == order.SortByCustomerName && p.SortOrder == "asc" &&
			p.StartDate != nil && p.EndDate != nil &&
			p.EndDate.After(*p.StartDate)
	})).Return(&order.ListResult{Orders: []*order.Order{}, Page: 2, Limit: 10}, nil)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet,
		"/orders?page=2&limit=10&filter=unpaid&customerName=jos%C3%A9&sortBy=customer_name&sortOrder=asc&startDate=2026-01-01&endDate=2026-01-31", nil)))

	assert.Equal(t, http.StatusOK, rec.Code)
	env.orders.AssertExpectations(t)
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	env.grant()
	env.orders.On("Create", mock.Anything, "Alex", mock.MatchedBy(func(lines []order.LineInput) bool {
		return len(lines) == 1 && lines[0].Name == "Coffee" &&
			lines[0].Quantity == 3 && lines[0].Price.Equal(dec("2.50"))
	})).Return(&order.Order{ID: "ord-1", TotalCost: dec("7.50")}, nil)

	payload := bytes.NewBufferString(`{"customer_name":"Alex","items":[{"name":"Coffee","price":2.50,"quantity":3}]}`)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodPost, "/orders", payload)))

	require.Equal(t, http.StatusCreated, rec.Code)
	// MarshalJSONWithoutQuotes keeps money numeric on the wire.
	assert.Contains(t, rec.Body.String(), `"total_cost":7.5`)
}

func TestEditPaidOrderMapsTo400(t *testing.T) {
	env := newTestEnv(t)
	env.grant()
	env.orders.On("Edit", mock.Anything, "ord-1", mock.Anything).
		Return(nil, apperr.New(apperr.State, "cannot edit a paid order"))

	payload := bytes.NewBufferString(`{"id":"ord-1","items":[{"name":"Cake","price":3,"quantity":1}]}`)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodPatch, "/orders", payload)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot edit a paid order")
}

func TestReviewAccessRequest(t *testing.T) {
	env := newTestEnv(t)
	env.grant()
	notes := "checked"
	env.access.On("Review", mock.Anything, "req-1", "approve", &notes).
		Return(&access.ReviewResult{
			Request:           &access.AccessRequest{ID: "req-1", Status: access.StatusApproved},
			Message:           "request approved, but the credentials email could not be sent; share the temporary password manually",
			EmailFailed:       true,
			TemporaryPassword: "Tmp!Passw0rd",
		}, nil)

	payload := bytes.NewBufferString(`{"requestId":"req-1","action":"approve","adminNotes":"checked"}`)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodPost, "/approve-request", payload)))

	require.Equal(t, http.StatusOK, rec.Code)

	var body access.ReviewResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.EmailFailed)
	assert.Equal(t, "Tmp!Passw0rd", body.TemporaryPassword)
}

func TestUpstreamErrorIsRedacted(t *testing.T) {
	env := newTestEnv(t)
	env.grant()
	env.reports.On("Generate", mock.Anything, (*int)(nil), (*int)(nil)).
		Return(nil, apperr.Newf(apperr.Upstream, "pq: connection refused on 10.0.0.5"))

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/reports", nil)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestVerifyPermissionEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.users.On("VerifyPermission", mock.Anything, "valid-token").
		Return(&user.User{Email: "staff@vinechurch.com", Role: user.RoleMember, OrdersPermission: true}, nil)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/verify-permission", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hasPermission":true`)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), "requests_total")
}
