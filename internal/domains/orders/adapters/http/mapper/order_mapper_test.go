package mapper

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
)

func TestToItemInput_RoundsToCents(t *testing.T) {
	in := ToItemInput(Item{Flavor: "calabresa", Size: "media", Quantity: 3, UnitPrice: 0.1})
	require.True(t, decimal.RequireFromString("0.10").Equal(in.UnitPrice))

	in = ToItemInput(Item{Quantity: 1, UnitPrice: 19.999})
	require.True(t, decimal.RequireFromString("20").Equal(in.UnitPrice))
}

func TestFromDomainOrder(t *testing.T) {
	order := &domain.Order{
		ID:      3,
		OwnerID: 8,
		Status:  domain.StatusPending,
		Total:   decimal.RequireFromString("10.30"),
		Items: []domain.Item{
			{ID: 1, OrderID: 3, Flavor: "a", Size: "g", Quantity: 2, UnitPrice: decimal.RequireFromString("5")},
			{ID: 2, OrderID: 3, Flavor: "b", Size: "p", Quantity: 3, UnitPrice: decimal.RequireFromString("0.10")},
		},
	}
	out := FromDomainOrder(order)
	require.Equal(t, "PENDING", out.Status)
	require.InDelta(t, 10.30, out.Total, 1e-9)
	require.Len(t, out.Items, 2)
	require.InDelta(t, 0.10, out.Items[1].UnitPrice, 1e-9)
	require.Equal(t, Order{}, FromDomainOrder(nil))
}

func TestParseStatuses(t *testing.T) {
	statuses, err := ParseStatuses(nil)
	require.NoError(t, err)
	require.Nil(t, statuses)

	statuses, err = ParseStatuses([]string{"PENDING", "CANCELED"})
	require.NoError(t, err)
	require.Equal(t, []domain.Status{domain.StatusPending, domain.StatusCanceled}, statuses)

	_, err = ParseStatuses([]string{"PENDENTE"})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}
