package session

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository/memory"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/Domenick1991/flightbooking/internal/service/payment"
	"github.com/Domenick1991/flightbooking/internal/service/users"
	"github.com/Domenick1991/flightbooking/internal/tx"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

func newServices(t *testing.T) Services {
	t.Helper()
	store := memory.New()
	store.AddFlights(
		domain.Flight{ID: 10, Year: 2015, Month: 7, DayOfMonth: 14, CarrierID: "AS", FlightNum: "10",
			OriginCity: "Seattle WA", DestCity: "Boston MA", Duration: 300, Capacity: 2, Price: decimal.NewFromInt(500)},
		domain.Flight{ID: 11, Year: 2015, Month: 7, DayOfMonth: 14, CarrierID: "UA", FlightNum: "11",
			OriginCity: "Seattle WA", DestCity: "Chicago IL", Duration: 150, Capacity: 2, Price: decimal.NewFromInt(200)},
		domain.Flight{ID: 12, Year: 2015, Month: 7, DayOfMonth: 14, CarrierID: "UA", FlightNum: "12",
			OriginCity: "Chicago IL", DestCity: "Boston MA", Duration: 120, Capacity: 2, Price: decimal.RequireFromString("150.5")},
		domain.Flight{ID: 13, Year: 2015, Month: 7, DayOfMonth: 15, CarrierID: "AS", FlightNum: "13",
			OriginCity: "Seattle WA", DestCity: "Boston MA", Duration: 310, Capacity: 2, Price: decimal.NewFromInt(450)},
	)
	repos := store.Repositories()
	txc := tx.NewController(repos.Tx, tx.DefaultPolicy(), tx.WithLogger(logger.Nop()),
		tx.WithSleep(func(context.Context, time.Duration) error { return nil }))

	return Services{
		Users:   users.NewUserService(repos.Users, txc, users.WithHashCost(bcrypt.MinCost)),
		Flights: flights.NewFlightService(repos.Flights, nil),
		Booking: booking.NewBookingService(repos.Flights, repos.Reservations, txc),
		Payment: payment.NewPaymentService(repos.Flights, repos.Reservations, repos.Users, txc),
	}
}

func run(t *testing.T, s *Session, line string) string {
	t.Helper()
	reply, quit := s.Execute(context.Background(), line)
	require.False(t, quit)
	return reply
}

const (
	directLine = "ID: 10 Date: 2015-7-14 Carrier: AS Number: 10 Origin: Seattle WA Dest: Boston MA Duration: 300 Capacity: 2 Price: 500\n"
	firstLeg   = "ID: 11 Date: 2015-7-14 Carrier: UA Number: 11 Origin: Seattle WA Dest: Chicago IL Duration: 150 Capacity: 2 Price: 200\n"
	secondLeg  = "ID: 12 Date: 2015-7-14 Carrier: UA Number: 12 Origin: Chicago IL Dest: Boston MA Duration: 120 Capacity: 2 Price: 150.5\n"
)

func TestSession_FullFlow(t *testing.T) {
	s := New(newServices(t))

	assert.Equal(t, "Created user alice\n", run(t, s, "create alice pw 1000"))
	assert.Equal(t, "Logged in as alice\n", run(t, s, "login alice pw"))
	assert.Equal(t, "User already logged in\n", run(t, s, "login alice pw"))

	assert.Equal(t,
		"Itinerary 0: 1 flight(s), 300 minutes\n"+directLine+
			"Itinerary 1: 2 flight(s), 270 minutes\n"+firstLeg+secondLeg,
		run(t, s, `search "Seattle WA" "Boston MA" 0 14 3`))

	assert.Equal(t, "Booked flight(s), reservation ID: 1\n", run(t, s, "book 0"))
	assert.Equal(t, "You cannot book two flights in the same day\n", run(t, s, "book 1"))
	assert.Equal(t, "No such itinerary 2\n", run(t, s, "book 2"))

	assert.Equal(t, "Reservation 1 paid: false:\n"+directLine, run(t, s, "reservations"))
	assert.Equal(t, "Paid reservation: 1 remaining balance: 500.00\n", run(t, s, "pay 1"))
	assert.Equal(t, "Cannot find unpaid reservation 1 under user: alice\n", run(t, s, "pay 1"))
	assert.Equal(t, "Reservation 1 paid: true:\n"+directLine, run(t, s, "reservations"))

	assert.Equal(t, "Canceled reservation 1\n", run(t, s, "cancel 1"))
	assert.Equal(t, "Failed to cancel reservation 1\n", run(t, s, "cancel 1"))
	assert.Equal(t, "No reservations found\n", run(t, s, "reservations"))

	reply, quit := s.Execute(context.Background(), "quit")
	assert.True(t, quit)
	assert.Equal(t, Goodbye, reply)
}

func TestSession_NotLoggedIn(t *testing.T) {
	s := New(newServices(t))

	assert.Equal(t, "Cannot book reservations, not logged in\n", run(t, s, "book 0"))
	assert.Equal(t, "Cannot view reservations, not logged in\n", run(t, s, "reservations"))
	assert.Equal(t, "Cannot pay, not logged in\n", run(t, s, "pay 1"))
	assert.Equal(t, "Cannot cancel reservations, not logged in\n", run(t, s, "cancel 1"))
	assert.Equal(t, "Login failed\n", run(t, s, "login ghost pw"))
}

func TestSession_SearchBeforeLoginCannotBook(t *testing.T) {
	s := New(newServices(t))
	run(t, s, "create bob pw 100")

	run(t, s, `search "Seattle WA" "Boston MA" 1 14 1`)
	assert.Equal(t, "Logged in as bob\n", run(t, s, "login bob pw"))
	assert.Equal(t, "Booking failed\n", run(t, s, "book 0"))

	run(t, s, `search "Seattle WA" "Boston MA" 1 14 1`)
	assert.Equal(t, "Booked flight(s), reservation ID: 1\n", run(t, s, "book 0"))
}

func TestSession_NewSearchReplacesCache(t *testing.T) {
	s := New(newServices(t))
	run(t, s, "create carol pw 100")
	run(t, s, "login carol pw")

	run(t, s, `search "Seattle WA" "Boston MA" 0 14 3`)
	assert.Equal(t, "Itinerary 0: 1 flight(s), 310 minutes\n"+
		"ID: 13 Date: 2015-7-15 Carrier: AS Number: 13 Origin: Seattle WA Dest: Boston MA Duration: 310 Capacity: 2 Price: 450\n",
		run(t, s, `search "Seattle WA" "Boston MA" 0 15 3`))
	assert.Equal(t, "No such itinerary 1\n", run(t, s, "book 1"))

	assert.Equal(t, "No flights match your selection\n", run(t, s, `search "Seattle WA" "Boston MA" 0 20 3`))
	assert.Equal(t, "No such itinerary 0\n", run(t, s, "book 0"))
}

func TestSession_SearchWithHugeItineraryCount(t *testing.T) {
	s := New(newServices(t))

	assert.Equal(t,
		"Itinerary 0: 1 flight(s), 300 minutes\n"+directLine+
			"Itinerary 1: 2 flight(s), 270 minutes\n"+firstLeg+secondLeg,
		run(t, s, `search "Seattle WA" "Boston MA" 0 14 2000000000000`))
	assert.Equal(t, "No flights match your selection\n", run(t, s, "search A B 0 14 2000000000000"))
}

func TestSession_InsufficientFunds(t *testing.T) {
	s := New(newServices(t))
	run(t, s, "create dave pw 100")
	run(t, s, "login dave pw")
	run(t, s, `search "Seattle WA" "Boston MA" 0 14 3`)
	require.Equal(t, "Booked flight(s), reservation ID: 1\n", run(t, s, "book 1"))

	assert.Equal(t, "User has only 100.00 in account but itinerary costs 350.5\n", run(t, s, "pay 1"))
}

func TestSession_CapacityFull(t *testing.T) {
	svc := newServices(t)
	for _, name := range []string{"u1", "u2", "u3"} {
		s := New(svc)
		run(t, s, "create "+name+" pw 0")
		run(t, s, "login "+name+" pw")
		run(t, s, `search "Seattle WA" "Boston MA" 1 14 1`)
		reply := run(t, s, "book 0")
		if name == "u3" {
			assert.Equal(t, "Booking failed\n", reply)
		} else {
			assert.Contains(t, reply, "Booked flight(s)")
		}
	}
}

func TestSession_CreateFailures(t *testing.T) {
	s := New(newServices(t))

	assert.Equal(t, "Created user erin\n", run(t, s, "create erin pw 0"))
	assert.Equal(t, "Failed to create user\n", run(t, s, "create erin pw 0"))
	assert.Equal(t, "Failed to create user\n", run(t, s, "create frank pw -1"))
	assert.Equal(t, "Failed to create user\n", run(t, s, "create frank pw lots"))
	assert.Equal(t, "Failed to create user\n", run(t, s, "create abcdefghijklmnopqrstu pw 0"))
}

func TestSession_BadInput(t *testing.T) {
	s := New(newServices(t))

	assert.Equal(t, "", run(t, s, "   "))
	assert.Equal(t, "Error: unrecognized command 'fly'\n", run(t, s, "fly"))
	assert.Equal(t, "Error: usage: book <itinerary id>\n", run(t, s, "book x"))
	assert.Equal(t, "Error: usage: search <origin city> <destination city> <direct> <day> <num itineraries>\n",
		run(t, s, "search A B 2 14 1"))
	assert.Equal(t, "Failed to search\n", run(t, s, "search A B 1 14 0"))
	assert.Equal(t, "Failed to search\n", run(t, s, "search A B 1 40 1"))
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"login alice pw", []string{"login", "alice", "pw"}},
		{`search "Seattle WA" "Boston MA" 1 14 10`, []string{"search", "Seattle WA", "Boston MA", "1", "14", "10"}},
		{"  book   3  ", []string{"book", "3"}},
		{`create "" pw 1`, []string{"create", "", "pw", "1"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tokenize(tt.line), tt.line)
	}
}
