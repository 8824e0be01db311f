package models

// Product is the core catalog record held in the relational store.
// The flexible details document in MongoDB is merged over these fields
// at read time, so handlers work with the merged map rather than this
// struct; it is the canonical shape for paths that only need core data.
type Product struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	SKU       string  `json:"sku"`
	Stock     int     `json:"stock"`
}

// TopProduct is a core product annotated with its warehouse view count
// and a thumbnail URL, as returned by the analytics ranking.
type TopProduct struct {
	Product
	TotalViews int    `json:"total_views"`
	ImageURL   string `json:"image_url"`
}
