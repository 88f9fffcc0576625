package domain

import "time"

// Product is a catalog entry maintained through the admin API.
type Product struct {
	SKU               string    `db:"sku" json:"sku"`
	ProductName       string    `db:"product_name" json:"product_name"`
	Category          string    `db:"category" json:"category"`
	Price             float64   `db:"price" json:"price"`
	CoveragePerSqm    string    `db:"coverage_per_sqm" json:"coverage_per_sqm"`
	DryingTime        string    `db:"drying_time" json:"drying_time"`
	ApplicationMethod string    `db:"application_method" json:"application_method"`
	ImageURL          string    `db:"image_url" json:"image_url"`
	VideoURL          string    `db:"video_url" json:"video_url"`
	Description       string    `db:"description" json:"description"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// InventoryItem is the warehouse-facing record the chat pipeline matches
// against. It mirrors Product but carries stock and a youtube link, the
// columns the enrichment job fills in.
type InventoryItem struct {
	SKU               string    `db:"sku" json:"sku"`
	ProductName       string    `db:"product_name" json:"product_name"`
	Category          string    `db:"category" json:"category"`
	Price             float64   `db:"price" json:"price"`
	CoveragePerSqm    string    `db:"coverage_per_sqm" json:"coverage_per_sqm"`
	DryingTime        string    `db:"drying_time" json:"drying_time"`
	ApplicationMethod string    `db:"application_method" json:"application_method"`
	ImageURL          string    `db:"image_url" json:"image_url"`
	YoutubeURL        string    `db:"youtube_url" json:"youtube_url"`
	Description       string    `db:"description" json:"description"`
	StockQty          int64     `db:"stock_qty" json:"stock_qty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Driver status values as stored. Anything else renders as unknown;
// transitions are not enforced.
const (
	DriverActive = "active"
	DriverBusy   = "busy"
	DriverAway   = "away"
)

type Driver struct {
	ID          string    `db:"id" json:"id"`
	FullName    string    `db:"full_name" json:"full_name"`
	Phone       string    `db:"phone" json:"phone"`
	Status      string    `db:"status" json:"status"`
	VehicleType string    `db:"vehicle_type" json:"vehicle_type"`
	Location    string    `db:"location" json:"location"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// BusinessInfo is a manually curated question/answer pair injected into the
// model's system prompt.
type BusinessInfo struct {
	ID        string    `db:"id" json:"id"`
	Category  string    `db:"category" json:"category"`
	Question  string    `db:"question" json:"question"`
	Answer    string    `db:"answer" json:"answer"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	VideoURL  string    `db:"video_url" json:"video_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CachedAnswer is one row of the answers cache. Payload holds a serialized
// Blueprint. A nil ExpiresAt means the entry never goes stale.
type CachedAnswer struct {
	Key       string     `db:"key" json:"key"`
	Payload   string     `db:"payload" json:"payload"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Fresh reports whether the cached answer may still be served at now.
// Entries without an expiry never go stale.
func (c *CachedAnswer) Fresh(now time.Time) bool {
	if c == nil {
		return false
	}
	if c.ExpiresAt == nil {
		return true
	}
	return now.Before(*c.ExpiresAt)
}

// ChatEntry is an append-only log row of a resolved query. It is only read
// back for dashboard display.
type ChatEntry struct {
	ID        string    `db:"id" json:"id"`
	Query     string    `db:"query" json:"query"`
	Response  string    `db:"response" json:"response"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
