package vehicle

import (
	"fmt"
	"time"
)

// ListingType says whether a vehicle is offered for rent or for sale.
type ListingType string

const (
	ListingRent ListingType = "rent"
	ListingSale ListingType = "sale"
)

// ParseListingType validates a listing type from a query string.
func ParseListingType(s string) (ListingType, error) {
	switch t := ListingType(s); t {
	case ListingRent, ListingSale:
		return t, nil
	default:
		return "", fmt.Errorf("unknown listing type %q", s)
	}
}

// Vehicle is a marketplace listing. Prices are in minor currency units.
type Vehicle struct {
	ID          int64       `json:"id"`
	OwnerID     *int64      `json:"owner_id,omitempty"`
	Make        string      `json:"make"`
	Model       string      `json:"model"`
	Year        int         `json:"year"`
	Location    string      `json:"location"`
	PricePerDay int64       `json:"price_per_day"`
	ListingType ListingType `json:"listing_type"`
	IsAvailable bool        `json:"is_available"`
	ImageURL    string      `json:"image_url,omitempty"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Rentable reports whether the vehicle can currently be booked.
func (v Vehicle) Rentable() bool {
	return v.ListingType == ListingRent && v.IsAvailable
}

// Filter narrows a listing search. Zero values mean "any".
type Filter struct {
	ListingType ListingType
	Make        string
	Location    string
	MaxPrice    *int64
	Available   *bool
	Limit       int
	Offset      int
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

func (f Filter) normalized() Filter {
	if f.ListingType == "" {
		f.ListingType = ListingRent
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
