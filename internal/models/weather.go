package models

// Weather is the current conditions at a location, temperature in Fahrenheit
type Weather struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Fallback    bool    `json:"fallback,omitempty"`
}
