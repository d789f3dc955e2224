package models

// Location is a WGS84 coordinate pair
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the location is unset
func (l Location) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0
}

// Place is a place-search result
type Place struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Rating     float64   `json:"rating"`
	PriceLevel *int      `json:"price_level,omitempty"`
	Photos     []string  `json:"photos"`
	Location   *Location `json:"location,omitempty"`
	Types      []string  `json:"types"`
}

// BusinessCategory is a review-provider category tag
type BusinessCategory struct {
	Title string `json:"title"`
}

// BusinessLocation is a review-provider postal address
type BusinessLocation struct {
	Address1       string   `json:"address1"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	ZipCode        string   `json:"zip_code"`
	DisplayAddress []string `json:"display_address"`
}

// Coordinates is the review-provider coordinate shape
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Business is a review-provider search result
type Business struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Rating       float64            `json:"rating"`
	ReviewCount  int                `json:"review_count"`
	Price        string             `json:"price,omitempty"`
	URL          string             `json:"url"`
	ImageURL     string             `json:"image_url"`
	Categories   []BusinessCategory `json:"categories"`
	Location     BusinessLocation   `json:"location"`
	Coordinates  Coordinates        `json:"coordinates"`
	Phone        string             `json:"phone"`
	DisplayPhone string             `json:"display_phone"`
}

// ReviewSummary is the review data merged into a place. Empty fields are omitted so a
// failed lookup serializes as {}.
type ReviewSummary struct {
	ReviewRating *float64 `json:"yelpRating,omitempty"`
	Reviews      *int     `json:"yelpReviews,omitempty"`
	Price        string   `json:"yelpPrice,omitempty"`
	URL          string   `json:"yelpUrl,omitempty"`
}

// Venue is a place merged with its review summary and distance from the search origin
type Venue struct {
	Place
	ReviewSummary
	DistanceMeters float64 `json:"distance"`
	Favorite       bool    `json:"favorite"`
}
