package domain

import "github.com/shopspring/decimal"

// Reservation is a booked itinerary owned by one user. SecondFlightID is nil for
// a direct itinerary.
type Reservation struct {
	ID             int64  `json:"id" db:"id"`
	Username       string `json:"username" db:"username"`
	FirstFlightID  int64  `json:"fid1" db:"fid1"`
	SecondFlightID *int64 `json:"fid2,omitempty" db:"fid2"`
	Paid           bool   `json:"paid" db:"paid"`
}

// FlightIDs returns the ids of every leg in travel order.
func (r Reservation) FlightIDs() []int64 {
	if r.SecondFlightID == nil {
		return []int64{r.FirstFlightID}
	}
	return []int64{r.FirstFlightID, *r.SecondFlightID}
}

// NewReservation builds an unpaid reservation for the given itinerary.
func NewReservation(id int64, username string, it Itinerary) Reservation {
	r := Reservation{ID: id, Username: username, FirstFlightID: it.First.ID}
	if it.Second != nil {
		second := it.Second.ID
		r.SecondFlightID = &second
	}
	return r
}

// ReservationDetails is a reservation with its flights resolved.
type ReservationDetails struct {
	Reservation
	Itinerary Itinerary `json:"itinerary"`
}

// User is a customer account.
type User struct {
	Username     string          `json:"username" db:"username"`
	PasswordHash string          `json:"-" db:"password"`
	Balance      decimal.Decimal `json:"balance" db:"balance"`
}

const (
	MaxUsernameLength = 20
	MaxPasswordLength = 20
)
