package orderserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/http/mapper"
	orderapp "github.com/Apurer/go-gin-order-api/internal/domains/orders/application"
	orderdomain "github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

const (
	idempotencyKeyHeader   = "Idempotency-Key"
	idempotentReplayHeader = "Idempotent-Replayed"
)

var errAnonymousIdempotencyKey = errors.New("idempotency key requires a bearer token")

// OrderAPI wires HTTP transport with the orders bounded context services and workflows.
type OrderAPI struct {
	service   orderports.Service
	items     orderports.ItemService
	workflows orderports.WorkflowOrchestrator
	creator   orderports.IdempotentCreator
	policy    orderdomain.Policy
}

// OrderAPIOption customises an OrderAPI.
type OrderAPIOption func(*OrderAPI)

// WithIdempotentCreator honours the Idempotency-Key header on order creation.
func WithIdempotentCreator(creator orderports.IdempotentCreator) OrderAPIOption {
	return func(api *OrderAPI) { api.creator = creator }
}

// WithCreatePolicy decides who an authenticated caller may open orders for.
// Anonymous callers name the owner themselves.
func WithCreatePolicy(policy orderdomain.Policy) OrderAPIOption {
	return func(api *OrderAPI) {
		if policy != nil {
			api.policy = policy
		}
	}
}

// NewOrderAPI creates an OrderAPI. workflows may be nil, in which case
// finalization runs inline through the service.
func NewOrderAPI(service orderports.Service, items orderports.ItemService, workflows orderports.WorkflowOrchestrator, opts ...OrderAPIOption) OrderAPI {
	api := OrderAPI{service: service, items: items, workflows: workflows, policy: orderdomain.OwnerOrAdmin{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&api)
		}
	}
	return api
}

// Post /order/pedidos
// Creates an empty pending order
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, err)
		return
	}
	actor, authenticated := actorFrom(c)
	ownerID := payload.Usuario
	if ownerID == 0 && authenticated {
		ownerID = actor.UserID
	}
	if authenticated && !api.policy.Authorize(actor, &orderdomain.Order{OwnerID: ownerID}, orderdomain.OpCreate).Allowed() {
		respondServiceError(c, fmt.Errorf("%w: create order for user %d", orderapp.ErrForbidden, ownerID))
		return
	}
	if key := strings.TrimSpace(c.GetHeader(idempotencyKeyHeader)); key != "" && api.creator != nil {
		if !authenticated {
			respondUnauthenticated(c, errAnonymousIdempotencyKey)
			return
		}
		result, err := api.creator.CreateOnce(c.Request.Context(), actor, key, ownerID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		status := http.StatusCreated
		if result.Replayed {
			c.Header(idempotentReplayHeader, "true")
			status = http.StatusOK
		}
		c.JSON(status, fromTransportOrder(orderhttpmapper.FromDomainOrder(result.Order)))
		return
	}
	order, err := api.service.Create(c.Request.Context(), ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromTransportOrder(orderhttpmapper.FromDomainOrder(order)))
}

// Post /order/pedidos/cancelar/:id
// Cancels a pending order
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	order, err := api.service.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, OrderStatusResponse{
		Mensagem: "pedido cancelado",
		Pedido:   fromTransportOrder(orderhttpmapper.FromDomainOrder(order)),
	})
}

// Post /order/pedidos/finalizar/:id
// Finalizes a pending order
func (api *OrderAPI) FinalizeOrder(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	order, err := api.finalize(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, OrderStatusResponse{
		Mensagem: "pedido finalizado",
		Pedido:   fromTransportOrder(orderhttpmapper.FromDomainOrder(order)),
	})
}

func (api *OrderAPI) finalize(ctx context.Context, actor orderdomain.Actor, id int64) (*orderdomain.Order, error) {
	if api.workflows != nil {
		return api.workflows.FinalizeOrder(ctx, actor, id)
	}
	return api.service.Finalize(ctx, actor, id)
}

// Get /order/pedido/:id
// Shows an order with its items
func (api *OrderAPI) ViewOrder(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	order, err := api.service.View(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, OrderViewResponse{
		QuantidadeItens: order.ItemCount(),
		Pedido:          fromTransportOrder(orderhttpmapper.FromDomainOrder(order)),
	})
}

// Get /order/listar
// Lists every order, admin only
func (api *OrderAPI) ListOrders(c *gin.Context) {
	api.list(c, api.service.ListAll)
}

// Get /order/listar/pedidos-usuario
// Lists the caller's orders
func (api *OrderAPI) ListMyOrders(c *gin.Context) {
	api.list(c, api.service.ListMine)
}

type listFunc func(ctx context.Context, actor orderdomain.Actor, statuses []orderdomain.Status) ([]*orderdomain.Order, error)

func (api *OrderAPI) list(c *gin.Context, fetch listFunc) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	statuses, err := orderhttpmapper.ParseStatuses(c.QueryArray("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	orders, err := fetch(c.Request.Context(), actor, statuses)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, OrderListResponse{Pedidos: fromTransportOrders(orderhttpmapper.FromDomainOrders(orders))})
}

// Post /order/pedido/adcionar/:id
// Adds an item to a pending order
func (api *OrderAPI) AddItem(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var payload ItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := orderhttpmapper.ToItemInput(toTransportItem(payload))
	result, err := api.items.AddItem(c.Request.Context(), actor, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, AddItemResponse{
		Mensagem:    "item adicionado",
		ItemId:      result.ItemID,
		PrecoPedido: result.Total.InexactFloat64(),
		Pedido:      fromTransportOrder(orderhttpmapper.FromDomainOrder(result.Order)),
	})
}

// Post /order/pedido/remover/:id
// Removes an item; the id is the item's
func (api *OrderAPI) RemoveItem(c *gin.Context) {
	actor, itemID, ok := actorAndID(c)
	if !ok {
		return
	}
	result, err := api.items.RemoveItem(c.Request.Context(), actor, itemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, RemoveItemResponse{
		Mensagem:        "item removido",
		QuantidadeItens: result.ItemCount,
		Pedido:          fromTransportOrder(orderhttpmapper.FromDomainOrder(result.Order)),
	})
}

func requireActor(c *gin.Context) (orderdomain.Actor, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		respondUnauthenticated(c, errMissingBearer)
	}
	return actor, ok
}

func actorAndID(c *gin.Context) (orderdomain.Actor, int64, bool) {
	actor, ok := requireActor(c)
	if !ok {
		return orderdomain.Actor{}, 0, false
	}
	id, ok := parseIDParam(c, "id")
	return actor, id, ok
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, errInvalidID(name))
		return 0, false
	}
	return id, true
}

func toTransportItem(item ItemRequest) orderhttpmapper.Item {
	return orderhttpmapper.Item{
		Quantity:  item.Quantidade,
		Flavor:    item.Sabor,
		Size:      item.Tamanho,
		UnitPrice: item.PrecoUnitario,
	}
}

func fromTransportOrder(order orderhttpmapper.Order) OrderResponse {
	items := make([]ItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemResponse{
			Id:            item.ID,
			Quantidade:    item.Quantity,
			Sabor:         item.Flavor,
			Tamanho:       item.Size,
			PrecoUnitario: item.UnitPrice,
		})
	}
	return OrderResponse{
		Id:      order.ID,
		Status:  order.Status,
		Preco:   order.Total,
		Usuario: order.OwnerID,
		Itens:   items,
	}
}

func fromTransportOrders(orders []orderhttpmapper.Order) []OrderResponse {
	result := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		result = append(result, fromTransportOrder(order))
	}
	return result
}
