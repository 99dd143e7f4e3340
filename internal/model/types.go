package model

// Item is one catalog row after load-time normalization. The display name
// is already resolved (override > primary locale > secondary locale >
// "ID:<id>") and SearchKey is the normalized form lookups compare against.
type Item struct {
	ID        int
	Name      string
	SearchKey string
}

// Candidate is a single lookup hit handed back to the command layer.
type Candidate struct {
	ID   int
	Name string
}

// Reading is what one origin reported for one item. Price fields are
// pointers because zero is a valid price and must not be mistaken for
// "no data".
type Reading struct {
	Origin       string
	ListingPrice *int64
	SalePrice    *int64
	SaleQuantity *int64
	SaleTime     *int64 // unix seconds
}

// Sale is the most recent completed transaction carried in a Summary.
type Sale struct {
	Price    int64
	Quantity int64
	Time     int64
}

// Summary is the reduction of every origin's reading for one item. Nil
// LowestPrice and AveragePrice mean no origin had market data; that is a
// valid outcome, not a failure.
type Summary struct {
	ItemID       int
	LowestPrice  *int64
	LowestOrigin string
	AveragePrice *int64
	Sale         *Sale
}

// Result wraps a Summary with how it was obtained. Shared means the caller
// rode on another caller's in-flight aggregation.
type Result struct {
	Summary   *Summary
	FromCache bool
	Shared    bool
}
