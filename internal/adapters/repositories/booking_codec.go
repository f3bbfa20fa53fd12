package repositories

import (
	"encoding/json"
	"fmt"
	"strings"

	"pickup-commit-service/internal/domain"
)

// Wire shape of one stop inside the stops_json blob. The loosely-typed
// metadata the booking flow writes is coerced into typed domain records here,
// at the store boundary, so nothing downstream handles untyped maps.
type stopRecord struct {
	Name         string   `json:"name,omitempty"`
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	ContactPhone string   `json:"contact_phone,omitempty"`
	ContactEmail string   `json:"contact_email,omitempty"`
}

func decodeStops(raw string) ([]domain.Stop, error) {
	var records []stopRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode stops: %w", err)
	}

	stops := make([]domain.Stop, 0, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.Address) == "" && (r.Lat == nil || r.Lng == nil) {
			return nil, fmt.Errorf("decode stops: stop %d has neither address nor coordinates", i)
		}
		stops = append(stops, domain.Stop{
			Name:         r.Name,
			Address:      r.Address,
			Lat:          r.Lat,
			Lng:          r.Lng,
			ContactPhone: r.ContactPhone,
			ContactEmail: r.ContactEmail,
		})
	}

	return stops, nil
}

func encodeStops(stops []domain.Stop) (string, error) {
	records := make([]stopRecord, 0, len(stops))
	for _, s := range stops {
		records = append(records, stopRecord{
			Name:         s.Name,
			Address:      s.Address,
			Lat:          s.Lat,
			Lng:          s.Lng,
			ContactPhone: s.ContactPhone,
			ContactEmail: s.ContactEmail,
		})
	}

	b, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode stops: %w", err)
	}
	return string(b), nil
}

func encodeCommitment(c domain.Commitment) (sequenceJSON, finalTimesJSON string, err error) {
	seq, err := json.Marshal(c.Sequence)
	if err != nil {
		return "", "", fmt.Errorf("encode sequence: %w", err)
	}
	times, err := json.Marshal(c.FinalTimes)
	if err != nil {
		return "", "", fmt.Errorf("encode final times: %w", err)
	}
	return string(seq), string(times), nil
}

func decodeSequence(raw string) ([]int, error) {
	var seq []int
	if err := json.Unmarshal([]byte(raw), &seq); err != nil {
		return nil, fmt.Errorf("decode sequence: %w", err)
	}
	return seq, nil
}

func decodeFinalTimes(raw string) (map[int]string, error) {
	var times map[int]string
	if err := json.Unmarshal([]byte(raw), &times); err != nil {
		return nil, fmt.Errorf("decode final times: %w", err)
	}
	return times, nil
}
