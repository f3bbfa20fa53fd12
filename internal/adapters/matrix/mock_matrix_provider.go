package matrix

import (
	"context"
	"fmt"

	"pickup-commit-service/internal/domain"
	"pickup-commit-service/internal/ports"
)

// MockLeg seeds one directed pair of the mock matrix.
type MockLeg struct {
	From, To int
	Seconds  int
	Meters   int
}

// BuildMatrix assembles an n×n travel matrix from the given legs. Pairs not
// listed stay nil, modeling matrix holes.
func BuildMatrix(n int, legs []MockLeg) ports.TravelMatrix {
	durations := make([][]*int, n)
	distances := make([][]*int, n)
	for i := 0; i < n; i++ {
		durations[i] = make([]*int, n)
		distances[i] = make([]*int, n)
	}

	for _, leg := range legs {
		if leg.From < 0 || leg.From >= n || leg.To < 0 || leg.To >= n {
			continue
		}
		sec := leg.Seconds
		m := leg.Meters
		durations[leg.From][leg.To] = &sec
		distances[leg.From][leg.To] = &m
	}

	return ports.TravelMatrix{DurationSeconds: durations, DistanceMeters: distances}
}

// MockMatrixProvider is a test double returning a fixed matrix (or a fixed
// failure) and counting calls.
type MockMatrixProvider struct {
	Legs  []MockLeg
	Err   error
	Calls int
}

func NewMockMatrixProvider(legs []MockLeg) *MockMatrixProvider {
	return &MockMatrixProvider{Legs: legs}
}

func (p *MockMatrixProvider) GetTravelMatrix(ctx context.Context, stops []domain.Stop) (ports.TravelMatrix, error) {
	p.Calls++

	if p.Err != nil {
		return ports.TravelMatrix{}, fmt.Errorf("%w: %v", ports.ErrMatrixUnavailable, p.Err)
	}

	return BuildMatrix(len(stops), p.Legs), nil
}
