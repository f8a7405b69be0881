package orderserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	ordersmemory "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/memory"
	orderusers "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/users"
	orderworkflows "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/workflows"
	orderapp "github.com/Apurer/go-gin-order-api/internal/domains/orders/application"
	usersmemory "github.com/Apurer/go-gin-order-api/internal/domains/users/adapters/memory"
	"github.com/Apurer/go-gin-order-api/internal/domains/users/adapters/security"
	userapp "github.com/Apurer/go-gin-order-api/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-order-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/go-gin-order-api/internal/shared/errors"
)

type testServer struct {
	t          *testing.T
	router     *gin.Engine
	users      *usersmemory.Repository
	adminToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userRepo := usersmemory.NewRepository()
	issuer, err := security.NewJWTIssuer([]byte("test-secret"))
	require.NoError(t, err)
	userSvc := userapp.NewService(userRepo, usersmemory.NewSessionStore(), security.NewBcryptHasher(bcrypt.MinCost), issuer)

	orderRepo := ordersmemory.NewRepository()
	orderSvc := orderapp.NewService(orderRepo, orderusers.NewDirectory(userRepo))
	items := orderapp.NewItemService(orderRepo)

	router := NewRouterWithGinEngine(gin.New(), ApiHandleFunctions{
		AuthAPI:  NewAuthAPI(userSvc),
		OrderAPI: NewOrderAPI(orderSvc, items, orderworkflows.NewInlineOrderWorkflows(orderSvc),
			WithIdempotentCreator(orderapp.NewIdempotentCreator(orderSvc, orderRepo, ordersmemory.NewIdempotencyStore()))),
	})

	_, err = userSvc.EnsureAdmin(context.Background(), userports.SignupInput{Name: "Bruno", Email: "admin@pedidos.test", Password: "admin-pass"})
	require.NoError(t, err)

	srv := &testServer{t: t, router: router, users: userRepo}
	srv.adminToken = srv.login("admin@pedidos.test", "admin-pass").AccessToken
	return srv
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) signup(name, email string) UserResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/auth/signup", "", SignupRequest{Nome: name, Email: email, Senha: "secret1"})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[UserResponse](s.t, rec)
}

func (s *testServer) login(email, password string) TokenResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Senha: password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[TokenResponse](s.t, rec)
}

// customer signs up and logs in, returning the user id and access token.
func (s *testServer) customer(name, email string) (int64, string) {
	s.t.Helper()
	user := s.signup(name, email)
	return user.Id, s.login(email, "secret1").AccessToken
}

func (s *testServer) createOrder(token string) OrderResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/order/pedidos", token, nil)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[OrderResponse](s.t, rec)
}

func (s *testServer) addItem(token string, orderID int64, qty int32, price float64) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(http.MethodPost, orderPath("/order/pedido/adcionar/", orderID), token,
		ItemRequest{Quantidade: qty, Sabor: "calabresa", Tamanho: "grande", PrecoUnitario: price})
}

func orderPath(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

func requireProblem(t *testing.T, rec *httptest.ResponseRecorder, status int, problemType string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	require.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	problem := decode[apierrors.ProblemDetail](t, rec)
	require.Equal(t, problemType, problem.Type)
}

func TestOrderLifecycleScenario(t *testing.T) {
	srv := newTestServer(t)
	aliceID, alice := srv.customer("Alice", "alice@pedidos.test")
	_, carol := srv.customer("Carol", "carol@pedidos.test")

	order := srv.createOrder(alice)
	require.Equal(t, aliceID, order.Usuario)
	require.Equal(t, "PENDING", order.Status)
	require.Zero(t, order.Preco)
	require.Empty(t, order.Itens)

	rec := srv.addItem(alice, order.Id, 2, 5.0)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	added := decode[AddItemResponse](t, rec)
	require.NotZero(t, added.ItemId)
	require.Equal(t, 10.0, added.PrecoPedido)
	require.Len(t, added.Pedido.Itens, 1)

	rec = srv.do(http.MethodGet, orderPath("/order/pedido/", order.Id), srv.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[OrderViewResponse](t, rec)
	require.Equal(t, 1, view.QuantidadeItens)
	require.Equal(t, 10.0, view.Pedido.Preco)

	rec = srv.do(http.MethodPost, orderPath("/order/pedidos/cancelar/", order.Id), carol, nil)
	requireProblem(t, rec, http.StatusForbidden, apierrors.TypeForbidden)

	rec = srv.do(http.MethodPost, orderPath("/order/pedidos/cancelar/", order.Id), alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	canceled := decode[OrderStatusResponse](t, rec)
	require.Equal(t, "CANCELED", canceled.Pedido.Status)

	requireProblem(t, srv.addItem(alice, order.Id, 1, 1.0), http.StatusConflict, apierrors.TypeConflict)
	rec = srv.do(http.MethodPost, orderPath("/order/pedidos/finalizar/", order.Id), alice, nil)
	requireProblem(t, rec, http.StatusConflict, apierrors.TypeConflict)
}

func TestFinalizeOrder_OnceThenConflict(t *testing.T) {
	srv := newTestServer(t)
	_, alice := srv.customer("Alice", "alice@pedidos.test")
	order := srv.createOrder(alice)

	rec := srv.do(http.MethodPost, orderPath("/order/pedidos/finalizar/", order.Id), alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "FINALIZED", decode[OrderStatusResponse](t, rec).Pedido.Status)

	rec = srv.do(http.MethodPost, orderPath("/order/pedidos/finalizar/", order.Id), srv.adminToken, nil)
	requireProblem(t, rec, http.StatusConflict, apierrors.TypeConflict)
}

func TestCreateOrder_Ownership(t *testing.T) {
	srv := newTestServer(t)
	aliceID, alice := srv.customer("Alice", "alice@pedidos.test")
	carolID, carol := srv.customer("Carol", "carol@pedidos.test")

	rec := srv.do(http.MethodPost, "/order/pedidos", "", CreateOrderRequest{Usuario: aliceID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, aliceID, decode[OrderResponse](t, rec).Usuario)

	rec = srv.do(http.MethodPost, "/order/pedidos", "", nil)
	requireProblem(t, rec, http.StatusBadRequest, apierrors.TypeValidation)

	rec = srv.do(http.MethodPost, "/order/pedidos", "", CreateOrderRequest{Usuario: 404})
	requireProblem(t, rec, http.StatusNotFound, apierrors.TypeNotFound)

	rec = srv.do(http.MethodPost, "/order/pedidos", srv.adminToken, CreateOrderRequest{Usuario: 999})
	requireProblem(t, rec, http.StatusNotFound, apierrors.TypeNotFound)

	rec = srv.do(http.MethodPost, "/order/pedidos", srv.adminToken, CreateOrderRequest{Usuario: aliceID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, aliceID, decode[OrderResponse](t, rec).Usuario)

	rec = srv.do(http.MethodPost, "/order/pedidos", carol, CreateOrderRequest{Usuario: aliceID})
	requireProblem(t, rec, http.StatusForbidden, apierrors.TypeForbidden)
	rec = srv.do(http.MethodPost, "/order/pedidos", carol, CreateOrderRequest{Usuario: carolID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(http.MethodGet, "/order/listar/pedidos-usuario", alice, nil)
	require.Len(t, decode[OrderListResponse](t, rec).Pedidos, 2)

	rec = srv.do(http.MethodPost, "/order/pedidos", "not-a-token", nil)
	requireProblem(t, rec, http.StatusUnauthorized, apierrors.TypeUnauthorized)
}

func TestCreateOrder_IdempotencyKey(t *testing.T) {
	srv := newTestServer(t)
	_, alice := srv.customer("Alice", "alice@pedidos.test")
	_, carol := srv.customer("Carol", "carol@pedidos.test")

	create := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/order/pedidos", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Idempotency-Key", "checkout-42")
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		return rec
	}

	first := create(alice)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	replay := create(alice)
	require.Equal(t, http.StatusOK, replay.Code, replay.Body.String())
	require.Equal(t, "true", replay.Header().Get("Idempotent-Replayed"))
	require.Equal(t, decode[OrderResponse](t, first).Id, decode[OrderResponse](t, replay).Id)

	own := create(carol)
	require.Equal(t, http.StatusCreated, own.Code, own.Body.String())
	require.NotEqual(t, decode[OrderResponse](t, first).Id, decode[OrderResponse](t, own).Id)

	rec := srv.do(http.MethodGet, "/order/listar/pedidos-usuario", alice, nil)
	require.Len(t, decode[OrderListResponse](t, rec).Pedidos, 1)
}

func TestCreateOrder_IdempotencyKeyDoesNotLeakOrders(t *testing.T) {
	srv := newTestServer(t)
	aliceID, alice := srv.customer("Alice", "alice@pedidos.test")
	_, carol := srv.customer("Carol", "carol@pedidos.test")

	create := func(token string, owner int64) *httptest.ResponseRecorder {
		raw, err := json.Marshal(CreateOrderRequest{Usuario: owner})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/order/pedidos", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "checkout-1")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		return rec
	}

	first := create(alice, 0)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	order := decode[OrderResponse](t, first)
	require.Equal(t, http.StatusOK, srv.addItem(alice, order.Id, 3, 7.5).Code)

	anonymous := create("", aliceID)
	requireProblem(t, anonymous, http.StatusUnauthorized, apierrors.TypeUnauthorized)
	require.NotContains(t, anonymous.Body.String(), "calabresa")

	requireProblem(t, create(carol, aliceID), http.StatusForbidden, apierrors.TypeForbidden)

	replay := create(carol, 0)
	require.Equal(t, http.StatusCreated, replay.Code, replay.Body.String())
	require.NotEqual(t, order.Id, decode[OrderResponse](t, replay).Id)
	require.Empty(t, decode[OrderResponse](t, replay).Itens)

	again := create(alice, 0)
	require.Equal(t, http.StatusOK, again.Code, again.Body.String())
	require.Equal(t, 22.5, decode[OrderResponse](t, again).Preco)

	forAlice := create(srv.adminToken, aliceID)
	require.Equal(t, http.StatusCreated, forAlice.Code, forAlice.Body.String())
	require.Equal(t, aliceID, decode[OrderResponse](t, forAlice).Usuario)
}

func TestOrderRoutesRequireBearer(t *testing.T) {
	srv := newTestServer(t)
	_, alice := srv.customer("Alice", "alice@pedidos.test")
	order := srv.createOrder(alice)

	paths := []struct{ method, path string }{
		{http.MethodPost, orderPath("/order/pedidos/cancelar/", order.Id)},
		{http.MethodPost, orderPath("/order/pedidos/finalizar/", order.Id)},
		{http.MethodGet, orderPath("/order/pedido/", order.Id)},
		{http.MethodGet, "/order/listar"},
		{http.MethodGet, "/order/listar/pedidos-usuario"},
		{http.MethodPost, orderPath("/order/pedido/adcionar/", order.Id)},
		{http.MethodPost, "/order/pedido/remover/1"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			requireProblem(t, srv.do(p.method, p.path, "", nil), http.StatusUnauthorized, apierrors.TypeUnauthorized)
			requireProblem(t, srv.do(p.method, p.path, "garbage", nil), http.StatusUnauthorized, apierrors.TypeUnauthorized)
		})
	}
}

func TestListOrders(t *testing.T) {
	srv := newTestServer(t)
	aliceID, alice := srv.customer("Alice", "alice@pedidos.test")
	_, carol := srv.customer("Carol", "carol@pedidos.test")
	first := srv.createOrder(alice)
	srv.createOrder(alice)
	srv.createOrder(carol)
	rec := srv.do(http.MethodPost, orderPath("/order/pedidos/cancelar/", first.Id), alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodGet, "/order/listar", srv.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, decode[OrderListResponse](t, rec).Pedidos, 3)

	requireProblem(t, srv.do(http.MethodGet, "/order/listar", alice, nil), http.StatusForbidden, apierrors.TypeForbidden)

	rec = srv.do(http.MethodGet, "/order/listar/pedidos-usuario", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	mine := decode[OrderListResponse](t, rec).Pedidos
	require.Len(t, mine, 2)
	for _, order := range mine {
		require.Equal(t, aliceID, order.Usuario)
	}

	rec = srv.do(http.MethodGet, "/order/listar/pedidos-usuario?status=CANCELED", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	canceled := decode[OrderListResponse](t, rec).Pedidos
	require.Len(t, canceled, 1)
	require.Equal(t, first.Id, canceled[0].Id)

	rec = srv.do(http.MethodGet, "/order/listar?status=SHIPPED", srv.adminToken, nil)
	requireProblem(t, rec, http.StatusBadRequest, apierrors.TypeValidation)
}

func TestRemoveItem(t *testing.T) {
	srv := newTestServer(t)
	_, alice := srv.customer("Alice", "alice@pedidos.test")
	_, carol := srv.customer("Carol", "carol@pedidos.test")
	order := srv.createOrder(alice)
	rec := srv.addItem(alice, order.Id, 3, 2.5)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	itemID := decode[AddItemResponse](t, rec).ItemId

	rec = srv.do(http.MethodPost, orderPath("/order/pedido/remover/", itemID), carol, nil)
	requireProblem(t, rec, http.StatusForbidden, apierrors.TypeForbidden)

	rec = srv.do(http.MethodPost, orderPath("/order/pedido/remover/", itemID), alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	removed := decode[RemoveItemResponse](t, rec)
	require.Zero(t, removed.QuantidadeItens)
	require.Zero(t, removed.Pedido.Preco)

	rec = srv.do(http.MethodPost, orderPath("/order/pedido/remover/", itemID), alice, nil)
	requireProblem(t, rec, http.StatusNotFound, apierrors.TypeNotFound)
}

func TestOrderRequestValidation(t *testing.T) {
	srv := newTestServer(t)
	_, alice := srv.customer("Alice", "alice@pedidos.test")
	order := srv.createOrder(alice)

	requireProblem(t, srv.do(http.MethodGet, "/order/pedido/abc", alice, nil), http.StatusBadRequest, apierrors.TypeBadRequest)
	requireProblem(t, srv.do(http.MethodGet, "/order/pedido/999", alice, nil), http.StatusNotFound, apierrors.TypeNotFound)
	requireProblem(t, srv.addItem(alice, order.Id, 0, 5), http.StatusBadRequest, apierrors.TypeValidation)
	requireProblem(t, srv.addItem(alice, order.Id, 1, -1), http.StatusBadRequest, apierrors.TypeValidation)
	requireProblem(t, srv.addItem(alice, 999, 1, 1), http.StatusNotFound, apierrors.TypeNotFound)

	req := httptest.NewRequest(http.MethodPost, orderPath("/order/pedido/adcionar/", order.Id), strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+alice)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	requireProblem(t, rec, http.StatusBadRequest, apierrors.TypeBadRequest)
}

func TestAuthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	user := srv.signup("Alice", "Alice@Pedidos.test")
	require.Equal(t, "alice@pedidos.test", user.Email)
	require.True(t, user.Ativo)
	require.False(t, user.Admin)

	rec := srv.do(http.MethodPost, "/auth/signup", "", SignupRequest{Nome: "Other", Email: "alice@pedidos.test", Senha: "secret1"})
	requireProblem(t, rec, http.StatusBadRequest, apierrors.TypeValidation)
	rec = srv.do(http.MethodPost, "/auth/signup", "", SignupRequest{Nome: "Long", Email: "long@pedidos.test", Senha: strings.Repeat("s", 80)})
	requireProblem(t, rec, http.StatusBadRequest, apierrors.TypeValidation)

	rec = srv.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "alice@pedidos.test", Senha: "wrong-pass"})
	requireProblem(t, rec, http.StatusUnauthorized, apierrors.TypeUnauthorized)

	form := url.Values{"username": {"alice@pedidos.test"}, "password": {"secret1"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login-form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tokens := decode[TokenResponse](t, rec)
	require.Equal(t, "Bearer", tokens.TokenType)
	require.NotEmpty(t, tokens.RefreshToken)
	require.Positive(t, tokens.ExpiresIn)

	rec = srv.do(http.MethodGet, "/auth/refresh", tokens.RefreshToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	refreshed := decode[TokenResponse](t, rec)
	require.NotEmpty(t, refreshed.AccessToken)
	require.Empty(t, refreshed.RefreshToken)
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/order/listar/pedidos-usuario", refreshed.AccessToken, nil).Code)

	requireProblem(t, srv.do(http.MethodGet, "/auth/refresh", tokens.AccessToken, nil), http.StatusUnauthorized, apierrors.TypeUnauthorized)
	requireProblem(t, srv.do(http.MethodGet, "/auth/refresh", "", nil), http.StatusUnauthorized, apierrors.TypeUnauthorized)
	requireProblem(t, srv.do(http.MethodGet, "/order/listar/pedidos-usuario", tokens.RefreshToken, nil), http.StatusUnauthorized, apierrors.TypeUnauthorized)
}

func TestInactiveUserIsUnauthenticated(t *testing.T) {
	srv := newTestServer(t)
	aliceID, alice := srv.customer("Alice", "alice@pedidos.test")
	require.NoError(t, srv.users.SetActive(context.Background(), aliceID, false))

	requireProblem(t, srv.do(http.MethodGet, "/order/listar/pedidos-usuario", alice, nil), http.StatusUnauthorized, apierrors.TypeUnauthorized)
	rec := srv.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "alice@pedidos.test", Senha: "secret1"})
	requireProblem(t, rec, http.StatusUnauthorized, apierrors.TypeUnauthorized)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[HealthResponse](t, rec).Status)
}
