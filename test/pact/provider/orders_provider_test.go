//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	pacttest "github.com/Apurer/go-gin-order-api/test/pact"

	orderserver "github.com/Apurer/go-gin-order-api/go"
	ordersmemory "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/observability"
	orderusers "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/users"
	orderworkflows "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-order-api/internal/domains/orders/application"
	orderdomain "github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	usersmemory "github.com/Apurer/go-gin-order-api/internal/domains/users/adapters/memory"
	usersobs "github.com/Apurer/go-gin-order-api/internal/domains/users/adapters/observability"
	"github.com/Apurer/go-gin-order-api/internal/domains/users/adapters/security"
	usersapp "github.com/Apurer/go-gin-order-api/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-order-api/internal/domains/users/ports"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestOrdersProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateCustomerExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedCustomer(t)
			}
			return nil, nil
		},
		pacttest.StateOrderExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedOrder(t, app.seedCustomer(t))
			}
			return nil, nil
		},
		pacttest.StateOrderMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedCustomer(t)
			}
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		RequestFilter:   app.swapPlaceholderToken,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp rebuilds the in-memory backend for every provider state.
type contractProviderApp struct {
	mu     sync.RWMutex
	router *gin.Engine
	users  userports.Service
	orders *ordersmemory.Repository
	token  string
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		router := app.router
		app.mu.RUnlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	userRepo := usersmemory.NewRepository()
	issuer, err := security.NewJWTIssuer([]byte("pact-secret"))
	require.NoError(t, err)
	userService := usersobs.New(usersapp.NewService(userRepo, usersmemory.NewSessionStore(), security.NewBcryptHasher(bcrypt.MinCost), issuer))

	orderRepo := ordersmemory.NewRepository()
	orderService := ordersobs.New(ordersapp.NewService(orderRepo, orderusers.NewDirectory(userRepo)))
	itemService := ordersobs.NewItemService(ordersapp.NewItemService(orderRepo))

	handlers := orderserver.ApiHandleFunctions{
		AuthAPI:  orderserver.NewAuthAPI(userService),
		OrderAPI: orderserver.NewOrderAPI(orderService, itemService, orderworkflows.NewInlineOrderWorkflows(orderService)),
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router = orderserver.NewRouterWithGinEngine(router, handlers)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.router = router
	a.users = userService
	a.orders = orderRepo
	a.token = ""
}

func (a *contractProviderApp) seedCustomer(t testing.TB) int64 {
	t.Helper()
	ctx := context.Background()
	user, err := a.users.Signup(ctx, userports.SignupInput{
		Name:     pacttest.CustomerName,
		Email:    pacttest.CustomerEmail,
		Password: pacttest.CustomerPassword,
	})
	require.NoError(t, err)
	pair, err := a.users.Login(ctx, pacttest.CustomerEmail, pacttest.CustomerPassword)
	require.NoError(t, err)
	a.mu.Lock()
	a.token = pair.AccessToken
	a.mu.Unlock()
	return user.ID
}

func (a *contractProviderApp) seedOrder(t testing.TB, ownerID int64) {
	t.Helper()
	order, err := orderdomain.NewOrder(ownerID)
	require.NoError(t, err)
	order.ID = pacttest.ExistingOrderID
	item, err := orderdomain.NewItem("calabresa", "grande", 2, decimal.NewFromInt(5))
	require.NoError(t, err)
	require.NoError(t, order.AddItem(item))
	_, err = a.orders.Create(context.Background(), order)
	require.NoError(t, err)
}

// swapPlaceholderToken replaces the consumer's placeholder bearer with the
// token issued for the seeded customer.
func (a *contractProviderApp) swapPlaceholderToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.RLock()
		token := a.token
		a.mu.RUnlock()
		if token != "" && strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		next.ServeHTTP(w, r)
	})
}
