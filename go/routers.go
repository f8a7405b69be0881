package orderserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// authMode tells the router which bearer middleware guards a route.
type authMode int

const (
	authNone authMode = iota
	authOptional
	authRequired
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	auth        authMode
}

// ApiHandleFunctions groups the handler sets mounted by the router.
type ApiHandleFunctions struct {
	// Routes for the auth part of the API
	AuthAPI AuthAPI
	// Routes for the order part of the API
	OrderAPI OrderAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := make([]gin.HandlerFunc, 0, 2)
		switch route.auth {
		case authRequired:
			handlers = append(handlers, handleFunctions.AuthAPI.RequireBearer())
		case authOptional:
			handlers = append(handlers, handleFunctions.AuthAPI.OptionalBearer())
		}
		handlers = append(handlers, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc is the default handler for endpoints without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	auth := &handleFunctions.AuthAPI
	order := &handleFunctions.OrderAPI
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", Healthz, authNone},
		{"Signup", http.MethodPost, "/auth/signup", auth.Signup, authNone},
		{"Login", http.MethodPost, "/auth/login", auth.Login, authNone},
		{"LoginForm", http.MethodPost, "/auth/login-form", auth.LoginForm, authNone},
		{"Refresh", http.MethodGet, "/auth/refresh", auth.Refresh, authNone},
		{"CreateOrder", http.MethodPost, "/order/pedidos", order.CreateOrder, authOptional},
		{"CancelOrder", http.MethodPost, "/order/pedidos/cancelar/:id", order.CancelOrder, authRequired},
		{"FinalizeOrder", http.MethodPost, "/order/pedidos/finalizar/:id", order.FinalizeOrder, authRequired},
		{"ViewOrder", http.MethodGet, "/order/pedido/:id", order.ViewOrder, authRequired},
		{"ListOrders", http.MethodGet, "/order/listar", order.ListOrders, authRequired},
		{"ListMyOrders", http.MethodGet, "/order/listar/pedidos-usuario", order.ListMyOrders, authRequired},
		{"AddItem", http.MethodPost, "/order/pedido/adcionar/:id", order.AddItem, authRequired},
		{"RemoveItem", http.MethodPost, "/order/pedido/remover/:id", order.RemoveItem, authRequired},
	}
}

// Get /healthz
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
