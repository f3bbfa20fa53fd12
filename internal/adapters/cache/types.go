package cache

// PairKey identifies one directed origin->destination pair. Keys are location
// strings produced by the matrix adapter (normalized addresses or rounded
// coordinates) and are expected to be consistent across lookups.
type PairKey struct {
	From string
	To   string
}

// PairMetrics holds the cached travel metrics for one pair.
type PairMetrics struct {
	DurationSeconds int
	DistanceMeters  int
}
