package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatistics_SingleOrder(t *testing.T) {
	orders := []Order{{
		ID:     "a",
		Items:  []Item{{Name: "Garam Masala", Price: 150, Quantity: 2}},
		Total:  300,
		Status: StatusReceived,
	}}

	stats := ComputeStatistics(orders, 50, 5)

	assert.Equal(t, 1, stats.OrderCount)
	assert.Equal(t, int64(350), stats.Revenue)
	assert.Equal(t, 2, stats.ItemsSold)
	assert.Equal(t, []ItemCount{{Name: "Garam Masala", Quantity: 2}}, stats.TopItems)
	assert.Equal(t, 1, stats.ByStatus[StatusReceived])
}

func TestComputeStatistics_TopItemsTieBreak(t *testing.T) {
	orders := []Order{
		{
			Total:  0,
			Status: StatusDelivered,
			Items: []Item{
				{Name: "Rasam Powder", Quantity: 3},
				{Name: "Sambar Powder", Quantity: 1},
			},
		},
		{
			Status: StatusReady,
			Items: []Item{
				{Name: "Turmeric Powder", Quantity: 3},
				{Name: "Sambar Powder", Quantity: 2},
				{Name: "Chutney Pudi", Quantity: 5},
			},
		},
	}

	stats := ComputeStatistics(orders, 0, 3)

	assert.Equal(t, []ItemCount{
		{Name: "Chutney Pudi", Quantity: 5},
		{Name: "Rasam Powder", Quantity: 3},
		{Name: "Sambar Powder", Quantity: 3},
	}, stats.TopItems)
	assert.Equal(t, 14, stats.ItemsSold)
}

func TestComputeStatistics_RevenueUsesStoredTotal(t *testing.T) {
	orders := []Order{
		{Total: 300, Items: []Item{{Name: "a", Price: 999, Quantity: 1}}},
		{Total: 120},
	}

	stats := ComputeStatistics(orders, 40, 5)

	assert.Equal(t, int64(300+120+2*40), stats.Revenue)
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := ComputeStatistics(nil, 50, 5)

	assert.Equal(t, 0, stats.OrderCount)
	assert.Equal(t, int64(0), stats.Revenue)
	assert.NotNil(t, stats.TopItems)
	assert.Empty(t, stats.TopItems)
}
