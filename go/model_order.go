package orderserver

// CreateOrderRequest - payload for POST /order/pedidos. Usuario defaults to the caller when omitted.
type CreateOrderRequest struct {
	Usuario int64 `json:"usuario"`
}

// ItemRequest - payload for POST /order/pedido/adcionar/:id
type ItemRequest struct {
	Quantidade int32 `json:"quantidade"`

	Sabor string `json:"sabor"`

	Tamanho string `json:"tamanho"`

	PrecoUnitario float64 `json:"preco_unitario"`
}

type ItemResponse struct {
	Id int64 `json:"id"`

	Quantidade int32 `json:"quantidade"`

	Sabor string `json:"sabor"`

	Tamanho string `json:"tamanho"`

	PrecoUnitario float64 `json:"preco_unitario"`
}

type OrderResponse struct {
	Id int64 `json:"id"`

	// Status - PENDING, CANCELED or FINALIZED
	Status string `json:"status"`

	Preco float64 `json:"preco"`

	Usuario int64 `json:"usuario"`

	Itens []ItemResponse `json:"itens"`
}

type OrderStatusResponse struct {
	Mensagem string `json:"mensagem"`

	Pedido OrderResponse `json:"pedido"`
}

type OrderViewResponse struct {
	QuantidadeItens int `json:"quantidade_itens"`

	Pedido OrderResponse `json:"pedido"`
}

type OrderListResponse struct {
	Pedidos []OrderResponse `json:"pedidos"`
}

type AddItemResponse struct {
	Mensagem string `json:"mensagem"`

	ItemId int64 `json:"item_id"`

	PrecoPedido float64 `json:"preco_pedido"`

	Pedido OrderResponse `json:"pedido"`
}

type RemoveItemResponse struct {
	Mensagem string `json:"mensagem"`

	QuantidadeItens int `json:"quantidade_itens"`

	Pedido OrderResponse `json:"pedido"`
}
