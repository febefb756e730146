package domain

// ReservationItem is one line of a stock-reservation request. Quantity counts
// units for unit sales and packages for packaged sales. ProductPackageID is
// meaningful only when SaleType is packaged.
//
// Satisfied items in a response carry the pricing basis that was applied:
// PricePerUnit for unit sales, PackageWeight and Price for packaged sales.
type ReservationItem struct {
	ProductID        int64    `json:"productId"`
	Quantity         int      `json:"quantity"`
	SaleType         SaleType `json:"saleType"`
	ProductPackageID int64    `json:"productPackageId,omitempty"`
	PricePerUnit     *float64 `json:"pricePerUnit,omitempty"`
	PackageWeight    *int     `json:"packageWeight,omitempty"`
	Price            *float64 `json:"price,omitempty"`
}

// ReservationRequest is the availability-check message consumed from the
// ordering system. It is a wire entity and is never persisted.
type ReservationRequest struct {
	OrderID int64             `json:"orderId"`
	Items   []ReservationItem `json:"items"`
}

// ReservationResponse is published back to the ordering system. Items holds
// only the satisfied line items; CreationPossible is true when at least one
// item was satisfied.
type ReservationResponse struct {
	OrderID          int64             `json:"orderId"`
	Items            []ReservationItem `json:"items"`
	CreationPossible bool              `json:"creationPossible"`
}
