package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"pickup-commit-service/internal/domain"
	"pickup-commit-service/internal/ports"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// fetchMatrix retrieves the full pairwise distance and duration matrices for
// the given locations using the OpenRouteService matrix endpoint.
//
// Wrong-sized responses are malformed and fail the call; nil cells inside a
// well-formed response are carried through as matrix holes for the sequencer
// and projector to degrade around.
func (o *ORSMatrixProvider) fetchMatrix(
	ctx context.Context,
	coords []domain.Coordinates,
) (ports.TravelMatrix, error) {
	n := len(coords)

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, n)
	for _, c := range coords {
		locations = append(locations, c.CoordsToList())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: locations,
		Metrics:   []string{"distance", "duration"},
	})
	if err != nil {
		return ports.TravelMatrix{}, fmt.Errorf("marshal matrix request: %w", err)
	}

	req, err := o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return ports.TravelMatrix{}, fmt.Errorf("matrix request: %w", err)
	}

	resp, err := o.do(req)
	if err != nil {
		return ports.TravelMatrix{}, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return ports.TravelMatrix{}, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Distances) != n || len(mr.Durations) != n {
		return ports.TravelMatrix{}, fmt.Errorf(
			"expected %d matrix rows; got distances=%d durations=%d",
			n, len(mr.Distances), len(mr.Durations),
		)
	}

	durations := make([][]*int, n)
	distances := make([][]*int, n)
	for i := 0; i < n; i++ {
		if len(mr.Durations[i]) != n || len(mr.Distances[i]) != n {
			return ports.TravelMatrix{}, fmt.Errorf(
				"matrix row %d has wrong width: distances=%d durations=%d want %d",
				i, len(mr.Distances[i]), len(mr.Durations[i]), n,
			)
		}

		durations[i] = make([]*int, n)
		distances[i] = make([]*int, n)
		for j := 0; j < n; j++ {
			// ORS returns float metrics with null holes; round known cells
			// to integers and keep holes as nil.
			if p := mr.Durations[i][j]; p != nil {
				v := int(math.Round(*p))
				durations[i][j] = &v
			}
			if p := mr.Distances[i][j]; p != nil {
				v := int(math.Round(*p))
				distances[i][j] = &v
			}
		}
	}

	return ports.TravelMatrix{DurationSeconds: durations, DistanceMeters: distances}, nil
}
