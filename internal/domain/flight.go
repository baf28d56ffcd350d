package domain

import "github.com/shopspring/decimal"

// Flight is immutable reference data. Duration is the actual flight time in minutes.
type Flight struct {
	ID         int64           `json:"fid" db:"fid"`
	Year       int             `json:"year" db:"year"`
	Month      int             `json:"month" db:"month_id"`
	DayOfMonth int             `json:"day_of_month" db:"day_of_month"`
	CarrierID  string          `json:"carrier_id" db:"carrier_id"`
	FlightNum  string          `json:"flight_num" db:"flight_num"`
	OriginCity string          `json:"origin_city" db:"origin_city"`
	DestCity   string          `json:"dest_city" db:"dest_city"`
	Duration   int             `json:"duration" db:"actual_time"`
	Capacity   int             `json:"capacity" db:"capacity"`
	Price      decimal.Decimal `json:"price" db:"price"`
}

// Itinerary is one direct flight or two connecting flights on the same day.
// Second is nil for a direct itinerary.
type Itinerary struct {
	First  Flight  `json:"first"`
	Second *Flight `json:"second,omitempty"`
}

func Direct(f Flight) Itinerary {
	return Itinerary{First: f}
}

func OneStop(first, second Flight) Itinerary {
	return Itinerary{First: first, Second: &second}
}

// Legs returns the flights in travel order.
func (it Itinerary) Legs() []Flight {
	if it.Second == nil {
		return []Flight{it.First}
	}
	return []Flight{it.First, *it.Second}
}

func (it Itinerary) Duration() int {
	total := 0
	for _, f := range it.Legs() {
		total += f.Duration
	}
	return total
}

func (it Itinerary) Cost() decimal.Decimal {
	total := decimal.Zero
	for _, f := range it.Legs() {
		total = total.Add(f.Price)
	}
	return total
}

// Day is the day of month the itinerary travels on. Both legs share it.
func (it Itinerary) Day() int {
	return it.First.DayOfMonth
}

// SearchQuery describes a flight search request.
type SearchQuery struct {
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	DayOfMonth     int    `json:"day_of_month"`
	DirectOnly     bool   `json:"direct_only"`
	MaxItineraries int    `json:"max_itineraries"`
}

func (q SearchQuery) Validate() error {
	if q.Origin == "" || q.Destination == "" {
		return ErrInvalidSearch
	}
	if q.DayOfMonth < 1 || q.DayOfMonth > 31 {
		return ErrInvalidSearch
	}
	if q.MaxItineraries < 1 {
		return ErrInvalidSearch
	}
	return nil
}
