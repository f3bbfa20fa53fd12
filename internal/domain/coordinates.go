package domain

// Immutable geographic coordinates (longitude, latitude) for a stop,
// either carried on the booking or resolved by geocoding its address.
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }
