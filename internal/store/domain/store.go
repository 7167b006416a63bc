package domain

import "time"

// Store is a physical store location.
type Store struct {
	ID              string  `json:"id"`
	City            string  `json:"city"`
	PostalCode      string  `json:"postal_code"`
	Street          string  `json:"street"`
	AddressName     string  `json:"address_name"`
	Longitude       float64 `json:"longitude"`
	Latitude        float64 `json:"latitude"`
	LocationType    string  `json:"location_type"`
	CollectionPoint bool    `json:"collection_point"`
	TodayOpen       string  `json:"today_open,omitempty"`
	TodayClose      string  `json:"today_close,omitempty"`
	SapStoreID      string  `json:"sap_store_id,omitempty"`

	// DistanceMeters is only populated on nearest-store queries.
	DistanceMeters float64 `json:"distance_meters,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Favorite marks a store as favorited by a user. UserName is the token
// subject propagated by the gateway.
type Favorite struct {
	UserName  string    `json:"user_name"`
	StoreID   string    `json:"store_id"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultLocationTypes is the store type filter applied when a query names
// none.
var DefaultLocationTypes = []string{"SupermarktPuP", "PuP", "Supermarkt"}
