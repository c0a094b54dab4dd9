package geo

// Point is a geographic coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// Validator tests whether coordinates fall inside the municipal boundary.
type Validator struct {
	polygon []Point
}

// NewValidator builds a validator for the given boundary polygon. Vertices are
// taken in order; the polygon is implicitly closed.
func NewValidator(polygon []Point) *Validator {
	return &Validator{polygon: polygon}
}

// Contains runs the standard ray-casting point-in-polygon test: a horizontal
// ray at the candidate latitude toggles the inside flag for every edge
// crossing.
func (v *Validator) Contains(lat, lng float64) bool {
	inside := false
	n := len(v.polygon)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := v.polygon[i], v.polygon[j]
		if (pi.Lat > lat) != (pj.Lat > lat) &&
			lng < (pj.Lng-pi.Lng)*(lat-pi.Lat)/(pj.Lat-pi.Lat)+pi.Lng {
			inside = !inside
		}
	}
	return inside
}
