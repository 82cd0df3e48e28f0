package order

import "sort"

type ItemCount struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type Statistics struct {
	OrderCount int            `json:"order_count"`
	Revenue    int64          `json:"revenue"`
	ItemsSold  int            `json:"items_sold"`
	TopItems   []ItemCount    `json:"top_items"`
	ByStatus   map[Status]int `json:"by_status"`
}

// ComputeStatistics aggregates orders for reporting. Revenue adds the flat
// delivery fee once per order; the fee is never stored on the order itself.
// Top items are ranked by total quantity, ties keep first-seen order.
func ComputeStatistics(orders []Order, deliveryFee int64, topN int) Statistics {
	stats := Statistics{
		OrderCount: len(orders),
		TopItems:   []ItemCount{},
		ByStatus:   make(map[Status]int),
	}

	var counts []ItemCount
	index := make(map[string]int)

	for _, o := range orders {
		stats.Revenue += o.Total + deliveryFee
		stats.ByStatus[o.Status]++
		for _, it := range o.Items {
			stats.ItemsSold += it.Quantity
			if i, ok := index[it.Name]; ok {
				counts[i].Quantity += it.Quantity
				continue
			}
			index[it.Name] = len(counts)
			counts = append(counts, ItemCount{Name: it.Name, Quantity: it.Quantity})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Quantity > counts[j].Quantity
	})
	if topN >= 0 && len(counts) > topN {
		counts = counts[:topN]
	}
	stats.TopItems = append(stats.TopItems, counts...)

	return stats
}
