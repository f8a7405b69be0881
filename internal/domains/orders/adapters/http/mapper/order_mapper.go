package mapper

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

// Order represents the transport-layer shape used by the handlers. Money is
// carried as float64 because the JSON contract uses plain numbers.
type Order struct {
	ID      int64
	OwnerID int64
	Status  string
	Total   float64
	Items   []Item
}

// Item is the transport-layer line item.
type Item struct {
	ID        int64
	Quantity  int32
	Flavor    string
	Size      string
	UnitPrice float64
}

// ToItemInput converts a transport item into the service input. Prices are
// rounded to cents.
func ToItemInput(item Item) ports.ItemInput {
	return ports.ItemInput{
		Flavor:    item.Flavor,
		Size:      item.Size,
		Quantity:  item.Quantity,
		UnitPrice: decimal.NewFromFloat(item.UnitPrice).Round(2),
	}
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		ID:      order.ID,
		OwnerID: order.OwnerID,
		Status:  string(order.Status),
		Total:   order.Total.InexactFloat64(),
		Items:   make([]Item, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		out.Items = append(out.Items, FromDomainItem(item))
	}
	return out
}

// FromDomainOrders converts a slice of domain orders.
func FromDomainOrders(orders []*domain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}

// FromDomainItem converts a domain item to the transport representation.
func FromDomainItem(item domain.Item) Item {
	return Item{
		ID:        item.ID,
		Quantity:  item.Quantity,
		Flavor:    item.Flavor,
		Size:      item.Size,
		UnitPrice: item.UnitPrice.InexactFloat64(),
	}
}

// ParseStatuses validates raw status filters. Empty input means no filter.
func ParseStatuses(raw []string) ([]domain.Status, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	statuses := make([]domain.Status, 0, len(raw))
	for _, value := range raw {
		status, err := domain.ParseStatus(value)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
