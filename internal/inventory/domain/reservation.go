package domain

// Reservation is the recorded outcome for one order. It is written once;
// repeat deliveries of the same order read it back instead of reserving again.
type Reservation struct {
	OrderID  string
	Products []string
	Reserved bool
	// FailedProductID names the first product that could not be reserved.
	FailedProductID string
}

// Reserve decides whether an order can be fulfilled from stock and returns
// the new stock levels to write when it can. Each occurrence of a product
// in products takes one unit.
func Reserve(orderID string, products []string, stock map[string]int) (Reservation, map[string]int) {
	res := Reservation{OrderID: orderID, Products: products}

	need := make(map[string]int, len(products))
	for _, p := range products {
		need[p]++
	}
	for _, p := range products {
		if stock[p] < need[p] {
			res.FailedProductID = p
			return res, nil
		}
	}

	updated := make(map[string]int, len(need))
	for p, n := range need {
		updated[p] = stock[p] - n
	}
	res.Reserved = true
	return res, updated
}
