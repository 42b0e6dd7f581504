package main

// DropSet is the set of product IDs whose history shows at least one
// consecutive price decrease.
type DropSet map[uint]bool

func (s DropSet) Contains(productID uint) bool {
	return s[productID]
}

// FindDrops scans every tracked product of a source and flags those
// whose chronological history ever decreased between consecutive valid
// observations. Products with fewer than two valid observations carry
// no drop signal and are skipped. One O(history) pass per product.
func FindDrops(db *Database, source string) (DropSet, error) {
	products, err := db.GetProducts(source)
	if err != nil {
		return nil, err
	}

	drops := make(DropSet)
	for _, product := range products {
		history, err := db.GetHistory(product.ID)
		if err != nil {
			return nil, err
		}
		if historyHasDrop(history) {
			drops[product.ID] = true
		}
	}
	return drops, nil
}

func historyHasDrop(history []PriceObservation) bool {
	prices := validPrices(history)
	if len(prices) < minValidObservations {
		return false
	}
	for i := 1; i < len(prices); i++ {
		if prices[i] < prices[i-1] {
			return true
		}
	}
	return false
}
