package ingest

import (
	"slices"

	"github.com/Veraticus/market-basket/internal/model"
)

// GroupBaskets collects line items into one basket per (source, transaction
// id), in the order transactions first appear. Basket items are sorted and unique,
// and the basket date is that of its first line item.
func GroupBaskets(items []model.LineItem) []model.Basket {
	type basketKey struct{ source, id string }
	index := make(map[basketKey]int)
	var baskets []model.Basket

	for _, li := range items {
		k := basketKey{source: li.Source, id: li.TransactionID}
		i, ok := index[k]
		if !ok {
			i = len(baskets)
			index[k] = i
			baskets = append(baskets, model.Basket{
				TransactionID: li.TransactionID,
				Source:        li.Source,
				Date:          li.OccurredAt,
			})
		}
		baskets[i].Items = append(baskets[i].Items, li.Item)
	}

	for i := range baskets {
		slices.Sort(baskets[i].Items)
		baskets[i].Items = slices.Compact(baskets[i].Items)
	}
	return baskets
}
