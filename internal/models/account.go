package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultPriceRangeMin and DefaultPriceRangeMax bound the estimated cost per person
	DefaultPriceRangeMin = 0
	DefaultPriceRangeMax = 100
	// DefaultMaxDistanceMiles is the default search radius for venue listings
	DefaultMaxDistanceMiles = 10
)

// Preferences narrows venue listings
type Preferences struct {
	PriceRangeMin    int       `json:"price_range_min" validate:"gte=0,lte=200"`
	PriceRangeMax    int       `json:"price_range_max" validate:"gte=0,lte=200,gtefield=PriceRangeMin"`
	MaxDistanceMiles float64   `json:"max_distance_miles" validate:"gte=1,lte=50"`
	UpdatedAt        time.Time `json:"updated_at,omitzero"`
}

// DefaultPreferences returns the preferences of a user who never saved any
func DefaultPreferences() Preferences {
	return Preferences{
		PriceRangeMin:    DefaultPriceRangeMin,
		PriceRangeMax:    DefaultPriceRangeMax,
		MaxDistanceMiles: DefaultMaxDistanceMiles,
	}
}

// Favorite is a venue saved under a category key. A venue appears at most once per key.
type Favorite struct {
	UserID    uuid.UUID `json:"-"`
	Category  string    `json:"category"`
	VenueID   string    `json:"venue_id"`
	Venue     Venue     `json:"venue"`
	CreatedAt time.Time `json:"created_at"`
}

// DateEvent is a saved date plan
type DateEvent struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Location    *string         `json:"location,omitempty"`
	Date        time.Time       `json:"date"`
	Weather     json.RawMessage `json:"weather,omitempty"`
	Coordinates *Location       `json:"coordinates,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
