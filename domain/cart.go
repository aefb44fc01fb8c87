package domain

import (
	"sort"
	"strconv"
	"strings"
)

// CartItem is one purchasable line of a cart. IdentityKey is derived from
// ProductID and the sorted option set; two items with the same key are the
// same line and must be merged, never duplicated.
type CartItem struct {
	IdentityKey string  `json:"cartItemId"`
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	OptionIDs   []int   `json:"optionIds"`
	VendorID    int     `json:"vendorId"`
}

// ItemIdentityKey derives the cart line identity, e.g. "3-[10,14]".
// Option order is irrelevant: the option set is sorted before joining.
func ItemIdentityKey(productID int, optionIDs []int) string {
	ids := make([]int, len(optionIDs))
	copy(ids, optionIDs)
	sort.Ints(ids)

	var b strings.Builder
	b.WriteString(strconv.Itoa(productID))
	b.WriteString("-[")
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	b.WriteByte(']')
	return b.String()
}

// TotalItems sums the quantities of all lines.
func TotalItems(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// TotalValue sums unit price times quantity over all lines. No currency
// rounding happens here; display formatting is a presentation concern.
func TotalValue(items []CartItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}
