package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

const Goodbye = "Goodbye\n"

var usage = map[string]string{
	"create":       "create <username> <password> <initial amount>",
	"login":        "login <username> <password>",
	"search":       "search <origin city> <destination city> <direct> <day> <num itineraries>",
	"book":         "book <itinerary id>",
	"pay":          "pay <reservation id>",
	"reservations": "reservations",
	"cancel":       "cancel <reservation id>",
	"quit":         "quit",
}

// Execute runs one command line and returns the reply. quit reports whether
// the client asked to end the session.
func (s *Session) Execute(ctx context.Context, line string) (reply string, quit bool) {
	args := Tokenize(line)
	if len(args) == 0 {
		return "", false
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "create":
		if len(args) != 3 {
			return usageError(cmd), false
		}
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			return s.reply("create", resultRejected, "Failed to create user\n"), false
		}
		return s.CreateCustomer(ctx, args[0], args[1], amount), false

	case "login":
		if len(args) != 2 {
			return usageError(cmd), false
		}
		return s.Login(ctx, args[0], args[1]), false

	case "search":
		if len(args) != 5 {
			return usageError(cmd), false
		}
		q, err := parseSearch(args)
		if err != nil {
			return usageError(cmd), false
		}
		return s.Search(ctx, q), false

	case "book", "pay", "cancel":
		if len(args) != 1 {
			return usageError(cmd), false
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return usageError(cmd), false
		}
		switch cmd {
		case "book":
			return s.Book(ctx, int(id)), false
		case "pay":
			return s.Pay(ctx, id), false
		default:
			return s.Cancel(ctx, id), false
		}

	case "reservations":
		return s.Reservations(ctx), false

	case "quit":
		return Goodbye, true

	default:
		return fmt.Sprintf("Error: unrecognized command '%s'\n", cmd), false
	}
}

func usageError(cmd string) string {
	return fmt.Sprintf("Error: usage: %s\n", usage[cmd])
}

func parseSearch(args []string) (domain.SearchQuery, error) {
	direct, err := strconv.Atoi(args[2])
	if err != nil || (direct != 0 && direct != 1) {
		return domain.SearchQuery{}, fmt.Errorf("direct flag %q", args[2])
	}
	day, err := strconv.Atoi(args[3])
	if err != nil {
		return domain.SearchQuery{}, fmt.Errorf("day %q: %w", args[3], err)
	}
	n, err := strconv.Atoi(args[4])
	if err != nil {
		return domain.SearchQuery{}, fmt.Errorf("itinerary count %q: %w", args[4], err)
	}
	return domain.SearchQuery{
		Origin:         args[0],
		Destination:    args[1],
		DirectOnly:     direct == 1,
		DayOfMonth:     day,
		MaxItineraries: n,
	}, nil
}

// Tokenize splits a command line on whitespace. Double quotes group words
// into one argument, as in search "Seattle WA" "Boston MA" 1 14 10.
func Tokenize(line string) []string {
	var (
		out     []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case unicode.IsSpace(r) && !quoted:
			if pending {
				out = append(out, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if pending {
		out = append(out, cur.String())
	}
	return out
}
