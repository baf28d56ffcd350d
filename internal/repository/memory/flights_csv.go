package memory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

// LoadFlightsCSV reads flights in the column order
// fid,year,month,day_of_month,carrier_id,flight_num,origin_city,dest_city,actual_time,capacity,price.
// A header row starting with "fid" is skipped. Rows without an actual_time
// are cancelled flights and are not loaded.
func (s *Store) LoadFlightsCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 11
	reader.TrimLeadingSpace = true

	var flights []domain.Flight
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read flights: %w", err)
		}
		if line == 1 && strings.EqualFold(rec[0], "fid") {
			continue
		}
		if strings.TrimSpace(rec[8]) == "" {
			continue
		}

		f, err := parseFlight(rec)
		if err != nil {
			return 0, fmt.Errorf("flights line %d: %w", line, err)
		}
		flights = append(flights, f)
	}

	s.AddFlights(flights...)
	return len(flights), nil
}

func parseFlight(rec []string) (domain.Flight, error) {
	ints := make([]int, 0, 6)
	for _, i := range []int{0, 1, 2, 3, 8, 9} {
		n, err := strconv.Atoi(strings.TrimSpace(rec[i]))
		if err != nil {
			return domain.Flight{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		ints = append(ints, n)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(rec[10]))
	if err != nil {
		return domain.Flight{}, fmt.Errorf("price: %w", err)
	}

	return domain.Flight{
		ID:         int64(ints[0]),
		Year:       ints[1],
		Month:      ints[2],
		DayOfMonth: ints[3],
		CarrierID:  rec[4],
		FlightNum:  rec[5],
		OriginCity: rec[6],
		DestCity:   rec[7],
		Duration:   ints[4],
		Capacity:   ints[5],
		Price:      price,
	}, nil
}
