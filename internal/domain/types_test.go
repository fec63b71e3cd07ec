package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimitOrder(t *testing.T) {
	order, err := NewLimitOrder(1, SideBuy, 10000, 10)
	require.NoError(t, err)
	assert.Equal(t, OrderKindLimit, order.Kind)
	assert.Equal(t, int64(10000), order.Price)
	assert.Equal(t, int64(10), order.Quantity)
	assert.NoError(t, order.Validate())
}

func TestNewLimitOrder_Invalid(t *testing.T) {
	_, err := NewLimitOrder(1, SideBuy, 0, 10)
	assert.ErrorIs(t, err, ErrNonPositivePrice)

	_, err = NewLimitOrder(1, SideBuy, 10000, 0)
	assert.ErrorIs(t, err, ErrNonPositiveQty)

	_, err = NewLimitOrder(1, SideSell, -5, 10)
	assert.ErrorIs(t, err, ErrNonPositivePrice)
}

func TestNewMarketOrder(t *testing.T) {
	order, err := NewMarketOrder(2, SideSell, 5)
	require.NoError(t, err)
	assert.Equal(t, OrderKindMarket, order.Kind)
	assert.Zero(t, order.Price)
	assert.NoError(t, order.Validate())
}

func TestNewMarketOrder_Invalid(t *testing.T) {
	_, err := NewMarketOrder(2, SideSell, -1)
	assert.ErrorIs(t, err, ErrNonPositiveQty)
}

func TestValidate(t *testing.T) {
	limitNoPrice := &Order{Side: SideBuy, Kind: OrderKindLimit, Quantity: 1}
	assert.ErrorIs(t, limitNoPrice.Validate(), ErrLimitWithoutPrice)

	marketWithPrice := &Order{Side: SideBuy, Kind: OrderKindMarket, Price: 100, Quantity: 1}
	assert.ErrorIs(t, marketWithPrice.Validate(), ErrMarketWithPrice)

	zeroQty := &Order{Side: SideBuy, Kind: OrderKindLimit, Price: 100}
	assert.ErrorIs(t, zeroQty.Validate(), ErrNonPositiveQty)
}

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, SideSell, SideBuy.Opposite())
	assert.Equal(t, SideBuy, SideSell.Opposite())
}

func TestTradeSideAttribution(t *testing.T) {
	buyAggressor := &Trade{AggressorAgentID: 1, RestingAgentID: 2, AggressorSide: SideBuy}
	assert.Equal(t, int64(1), buyAggressor.BuyerAgentID())
	assert.Equal(t, int64(2), buyAggressor.SellerAgentID())

	sellAggressor := &Trade{AggressorAgentID: 1, RestingAgentID: 2, AggressorSide: SideSell}
	assert.Equal(t, int64(2), sellAggressor.BuyerAgentID())
	assert.Equal(t, int64(1), sellAggressor.SellerAgentID())
}
