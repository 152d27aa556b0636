package types

// FilterMetadata describes the values available to the filter sidebar.
type FilterMetadata struct {
	Availability AvailabilityData `json:"availability"`
	Brands       []ValueCount     `json:"brands"`
	Categories   []ValueCount     `json:"categories"`
	PriceRange   PriceRange       `json:"priceRange"`
	Ratings      [6]int           `json:"ratings"`
	Total        int              `json:"total"`
}

type AvailabilityData struct {
	InStock    int `json:"inStock"`
	OutOfStock int `json:"outOfStock"`
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Summary backs the "showing X of Y items" line.
type Summary struct {
	Showing int `json:"showing"`
	Total   int `json:"total"`
}
