package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/dispatch"
	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/http/handlers"
)

// inlineLoop runs every submitted task synchronously.
type inlineLoop struct {
	waitErr error
	names   []string
}

func (l *inlineLoop) Submit(name string, task dispatch.Task) (*dispatch.Result, error) {
	l.names = append(l.names, name)
	_ = task(context.Background())
	return nil, nil
}

func (l *inlineLoop) SubmitWait(name string, task dispatch.Task, _ time.Duration) error {
	l.names = append(l.names, name)
	if l.waitErr != nil {
		return l.waitErr
	}
	return task(context.Background())
}

type stubRouter struct {
	handleFn func(raw []byte) error
}

func (s stubRouter) HandleUpdate(_ context.Context, raw []byte) error {
	if s.handleFn == nil {
		return nil
	}
	return s.handleFn(raw)
}

type stubOrderStore struct {
	createFn func(o *domain.Order, items []domain.OrderItem) error
}

func (s stubOrderStore) Create(_ context.Context, o *domain.Order, items []domain.OrderItem) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(o, items)
}

type stubCatalog struct {
	byID map[int64]*domain.Product
}

func (s stubCatalog) GetActive(_ context.Context, id int64) (*domain.Product, error) {
	return s.byID[id], nil
}

type stubBroadcaster struct {
	orders []*domain.Order
	err    error
}

func (s *stubBroadcaster) Broadcast(_ context.Context, order *domain.Order) error {
	s.orders = append(s.orders, order)
	return s.err
}

type stubTokenStore struct {
	createFn func(t *domain.RegistrationToken) (int64, error)
}

func (s stubTokenStore) Create(_ context.Context, t *domain.RegistrationToken) (int64, error) {
	if s.createFn == nil {
		return 1, nil
	}
	return s.createFn(t)
}

func TestPing(t *testing.T) {
	t.Parallel()

	h := handlers.New(nil)
	rec := httptest.NewRecorder()
	h.Ping(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pong", gjson.Get(rec.Body.String(), "message").String())
}

func TestWebhook_AcceptsValidUpdate(t *testing.T) {
	t.Parallel()

	loop := &inlineLoop{}
	var got []byte
	router := stubRouter{handleFn: func(raw []byte) error {
		got = raw
		return nil
	}}
	h := handlers.NewWebhookHandler(loop, router, time.Second, nil)

	body := `{"update_id":1,"message":{"message_id":1,"from":{"id":5},"chat":{"id":5},"text":"/start"}}`
	rec := httptest.NewRecorder()
	h.Receive(rec, httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, gjson.Get(rec.Body.String(), "ok").Bool())
	require.JSONEq(t, body, string(got))
	require.Equal(t, []string{"webhook update"}, loop.names)
}

func TestWebhook_RejectsNonUpdatePayload(t *testing.T) {
	t.Parallel()

	loop := &inlineLoop{}
	h := handlers.NewWebhookHandler(loop, stubRouter{}, time.Second, nil)

	for _, body := range []string{`not json`, `{"message":{}}`, ``} {
		rec := httptest.NewRecorder()
		h.Receive(rec, httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		require.True(t, gjson.Get(rec.Body.String(), "ok").Exists())
		require.False(t, gjson.Get(rec.Body.String(), "ok").Bool())
		require.NotEmpty(t, gjson.Get(rec.Body.String(), "error").String())
	}
	require.Empty(t, loop.names)
}

func TestWebhook_QueueFullMapsTo503(t *testing.T) {
	t.Parallel()

	loop := &inlineLoop{waitErr: dispatch.ErrQueueFull}
	h := handlers.NewWebhookHandler(loop, stubRouter{}, time.Second, nil)

	rec := httptest.NewRecorder()
	h.Receive(rec, httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(`{"update_id":1}`)))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.True(t, gjson.Get(rec.Body.String(), "ok").Exists())
	require.False(t, gjson.Get(rec.Body.String(), "ok").Bool())
	require.Equal(t, "busy", gjson.Get(rec.Body.String(), "error").String())
}

func TestWebhook_WaitTimeoutMapsTo504(t *testing.T) {
	t.Parallel()

	loop := &inlineLoop{waitErr: apperr.Timeout}
	h := handlers.NewWebhookHandler(loop, stubRouter{}, time.Second, nil)

	rec := httptest.NewRecorder()
	h.Receive(rec, httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(`{"update_id":1}`)))
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	require.False(t, gjson.Get(rec.Body.String(), "ok").Bool())
	require.Equal(t, "timeout", gjson.Get(rec.Body.String(), "error").String())
}

func TestWebhook_HandlerErrorMapsTo500(t *testing.T) {
	t.Parallel()

	loop := &inlineLoop{}
	router := stubRouter{handleFn: func([]byte) error { return apperr.Invalid }}
	h := handlers.NewWebhookHandler(loop, router, time.Second, nil)

	rec := httptest.NewRecorder()
	h.Receive(rec, httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(`{"update_id":1}`)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.False(t, gjson.Get(rec.Body.String(), "ok").Bool())
	// детали ошибки наружу не уходят
	require.Equal(t, "internal error", gjson.Get(rec.Body.String(), "error").String())
}

func promo(v float64) *float64 { return &v }

func orderHandler(store stubOrderStore, catalog stubCatalog, notifier *stubBroadcaster, loop *inlineLoop) *handlers.OrderHandler {
	return handlers.NewOrderHandler(store, catalog, notifier, loop, time.Second, nil)
}

func validOrderBody() string {
	return `{
		"name": "Mijoz",
		"phone": "+998 (90) 123-45-67",
		"region": "Samarqand",
		"district": "Registon",
		"address": "Registon 1",
		"payment": "card",
		"items": [{"id": 1, "quantity": 2}, {"id": 2, "quantity": 1}],
		"notes": "eshik oldiga"
	}`
}

func defaultCatalog() stubCatalog {
	return stubCatalog{byID: map[int64]*domain.Product{
		1: {ID: 1, Name: "Palov", Price: 50000, Active: true},
		2: {ID: 2, Name: "Somsa", Price: 10000, PromoPrice: promo(8000), Active: true},
	}}
}

func TestCreateOrder_HappyPath(t *testing.T) {
	t.Parallel()

	var created *domain.Order
	var createdItems []domain.OrderItem
	store := stubOrderStore{createFn: func(o *domain.Order, items []domain.OrderItem) error {
		created, createdItems = o, items
		return nil
	}}
	notifier := &stubBroadcaster{}
	loop := &inlineLoop{}
	h := orderHandler(store, defaultCatalog(), notifier, loop)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validOrderBody())))

	require.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	require.True(t, gjson.Get(body, "success").Bool())
	require.Equal(t, "Buyurtma qabul qilindi", gjson.Get(body, "message").String())
	require.EqualValues(t, 2, gjson.Get(body, "data.items_count").Int())
	// 2*50000 + 1*8000, промо-цена берёт верх
	require.EqualValues(t, 108000, gjson.Get(body, "data.total").Float())

	require.NotNil(t, created)
	require.Equal(t, gjson.Get(body, "data.order_id").String(), created.ID)
	require.Equal(t, "Mijoz", created.CustomerName)
	require.Equal(t, "+998901234567", created.Phone)
	require.Equal(t, "Registon", created.District)
	require.Equal(t, "eshik oldiga", created.Comment)
	require.Equal(t, domain.OrderPending, created.Status)
	require.Equal(t, domain.PaymentCard, created.Payment)
	require.Len(t, createdItems, 2)

	// рассылка ушла на диспетчерский цикл
	require.Len(t, notifier.orders, 1)
	require.Equal(t, created.ID, notifier.orders[0].ID)
}

func TestCreateOrder_ValidationErrors(t *testing.T) {
	t.Parallel()

	base := `"name":"m","phone":"+998901234567","region":"r","district":"d","address":"a","payment":"cash"`
	items := `"items":[{"id":1,"quantity":1}]`

	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"phone":"+998901234567","region":"r","district":"d","address":"a","payment":"cash",` + items + `}`, "name"},
		{"missing phone", `{"name":"m","region":"r","district":"d","address":"a","payment":"cash",` + items + `}`, "phone"},
		{"missing region", `{"name":"m","phone":"+998901234567","district":"d","address":"a","payment":"cash",` + items + `}`, "region"},
		{"missing district", `{"name":"m","phone":"+998901234567","region":"r","address":"a","payment":"cash",` + items + `}`, "district"},
		{"missing address", `{"name":"m","phone":"+998901234567","region":"r","district":"d","payment":"cash",` + items + `}`, "address"},
		{"missing payment", `{"name":"m","phone":"+998901234567","region":"r","district":"d","address":"a",` + items + `}`, "payment"},
		{"no items", `{` + base + `,"items":[]}`, "items"},
		{"malformed item", `{` + base + `,"items":[{"id":1,"quantity":-1}]}`, "item"},
		{"bad json", `{`, "invalid json"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := orderHandler(stubOrderStore{}, defaultCatalog(), &stubBroadcaster{}, &inlineLoop{})
			rec := httptest.NewRecorder()
			h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tc.body)))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := rec.Body.String()
			require.True(t, gjson.Get(body, "success").Exists())
			require.False(t, gjson.Get(body, "success").Bool())
			require.Contains(t, gjson.Get(body, "message").String(), tc.want)
			require.False(t, gjson.Get(body, "data").Exists())
		})
	}
}

func TestCreateOrder_UnknownProductIs404(t *testing.T) {
	t.Parallel()

	h := orderHandler(stubOrderStore{}, stubCatalog{}, &stubBroadcaster{}, &inlineLoop{})

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validOrderBody())))

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := rec.Body.String()
	require.False(t, gjson.Get(body, "success").Bool())
	require.Contains(t, gjson.Get(body, "message").String(), "product")
}

func TestCreateOrder_SlowBroadcastDoesNotFailCheckout(t *testing.T) {
	t.Parallel()

	loop := &inlineLoop{waitErr: apperr.Timeout}
	h := orderHandler(stubOrderStore{}, defaultCatalog(), &stubBroadcaster{}, loop)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validOrderBody())))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateToken_DisabledWithoutAdminToken(t *testing.T) {
	t.Parallel()

	h := handlers.NewTokenHandler(stubTokenStore{}, "", nil)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/tokens", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateToken_RejectsBadAdminToken(t *testing.T) {
	t.Parallel()

	h := handlers.NewTokenHandler(stubTokenStore{}, "s3cret", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/tokens", nil)
	req.Header.Set("X-Admin-Token", "wrong")
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateToken_IssuesToken(t *testing.T) {
	t.Parallel()

	var saved *domain.RegistrationToken
	store := stubTokenStore{createFn: func(tok *domain.RegistrationToken) (int64, error) {
		saved = tok
		return 3, nil
	}}
	h := handlers.NewTokenHandler(store, "s3cret", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/tokens", strings.NewReader(`{"created_by":"admin"}`))
	req.Header.Set("X-Admin-Token", "s3cret")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	require.NotEmpty(t, gjson.Get(body, "token").String())
	require.NotEmpty(t, gjson.Get(body, "expires_at").String())

	require.NotNil(t, saved)
	require.Equal(t, "admin", saved.CreatedBy)
	require.Equal(t, gjson.Get(body, "token").String(), saved.Token)
	require.WithinDuration(t, time.Now().Add(domain.TokenTTL), saved.ExpiresAt, time.Minute)
}
