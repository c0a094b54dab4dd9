package geo

// municipalBoundary is a simplified outline of the municipal territory,
// vertices as (lat, lng) pairs walked counter-clockwise.
var municipalBoundary = []Point{
	{Lat: 45.0070, Lng: 7.6290},
	{Lat: 45.0155, Lng: 7.6650},
	{Lat: 45.0290, Lng: 7.6960},
	{Lat: 45.0515, Lng: 7.7200},
	{Lat: 45.0790, Lng: 7.7350},
	{Lat: 45.1080, Lng: 7.7280},
	{Lat: 45.1260, Lng: 7.7050},
	{Lat: 45.1330, Lng: 7.6730},
	{Lat: 45.1290, Lng: 7.6380},
	{Lat: 45.1140, Lng: 7.6080},
	{Lat: 45.0920, Lng: 7.5880},
	{Lat: 45.0660, Lng: 7.5790},
	{Lat: 45.0400, Lng: 7.5840},
	{Lat: 45.0190, Lng: 7.6010},
}

// DefaultValidator returns a validator for the fixed municipal boundary.
func DefaultValidator() *Validator {
	return NewValidator(municipalBoundary)
}
