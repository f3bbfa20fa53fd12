package services

import "pickup-commit-service/internal/ports"

// SequenceStops orders a booking's stops using a greedy nearest-neighbor
// heuristic over the travel-duration matrix.
//
// The algorithm minimizes immediate travel duration at each step. It does not
// attempt global route optimization (e.g., TSP solvers); the design
// prioritizes determinism and simplicity over optimality.
//
// Starting from original stop index 0, each step extends the path to the
// unvisited stop with the minimum recorded duration from the last stop, ties
// broken by lowest original index. Stops with no recorded duration from the
// current position (matrix holes) are only considered once every stop with a
// known duration is exhausted, and are then taken in ascending index order.
// The result is always a full permutation of [0..n-1].
func SequenceStops(m ports.TravelMatrix, n int) []int {
	if n <= 0 {
		return []int{}
	}

	order := make([]int, 0, n)
	visited := make([]bool, n)

	order = append(order, 0)
	visited[0] = true

	for len(order) < n {
		last := order[len(order)-1]

		best := -1
		bestDuration := 0
		// Select next stop by minimum travel duration (greedy step).
		// Scanning in index order makes the strict < a lowest-index tie-break.
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			d, ok := m.Duration(last, j)
			if !ok {
				continue
			}
			if best == -1 || d < bestDuration {
				best = j
				bestDuration = d
			}
		}

		// Matrix hole fallback: no unvisited stop has a known duration from
		// here, so take the lowest remaining index.
		if best == -1 {
			for j := 0; j < n; j++ {
				if !visited[j] {
					best = j
					break
				}
			}
		}

		visited[best] = true
		order = append(order, best)
	}

	return order
}
