package repositories

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookingSeed is one entry of a JSON seed file. Ids are optional: entries
// without one get a fresh UUID, which keeps hand-written seed files short.
type BookingSeed struct {
	BookingID  string       `json:"booking_id"`
	TripDate   string       `json:"trip_date"`
	StartTime  string       `json:"start_time"`
	PickupTime string       `json:"pickup_time"`
	Stops      []stopRecord `json:"stops"`

	stopsJSON string
}

func loadSeeds(jsonPath string) ([]BookingSeed, error) {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed bookings: read %q: %w", jsonPath, err)
	}

	var data []BookingSeed
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("seed bookings: parse json: %w", err)
	}

	seeds := make([]BookingSeed, 0, len(data))
	for i, item := range data {
		if strings.TrimSpace(item.BookingID) == "" {
			item.BookingID = uuid.NewString()
		}

		if _, err := time.Parse("2006-01-02", item.TripDate); err != nil {
			return nil, fmt.Errorf("seed bookings: entry %d: invalid trip_date %q", i+1, item.TripDate)
		}
		if _, err := time.Parse("15:04", item.StartTime); err != nil {
			return nil, fmt.Errorf("seed bookings: entry %d: invalid start_time %q", i+1, item.StartTime)
		}
		if item.PickupTime != "" {
			if _, err := time.Parse("15:04", item.PickupTime); err != nil {
				return nil, fmt.Errorf("seed bookings: entry %d: invalid pickup_time %q", i+1, item.PickupTime)
			}
		}
		if len(item.Stops) == 0 {
			return nil, fmt.Errorf("seed bookings: entry %d: at least one stop is required", i+1)
		}

		stopsJSON, err := json.Marshal(item.Stops)
		if err != nil {
			return nil, fmt.Errorf("seed bookings: entry %d: encode stops: %w", i+1, err)
		}
		item.stopsJSON = string(stopsJSON)

		seeds = append(seeds, item)
	}

	return seeds, nil
}
