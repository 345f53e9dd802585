// Package flightdata reads the structured flight tables (airports,
// airlines, routes) that the knowledge base and the deterministic chat
// answers are built from.
package flightdata

import "errors"

// ErrNotFound indicates no row matched the lookup.
var ErrNotFound = errors.New("not found")

// Airport is one row of the airports table. Altitude is in feet,
// following the upstream OpenFlights convention.
type Airport struct {
	ID        int64
	Name      string
	City      string
	Country   string
	IATA      string
	ICAO      string
	Latitude  float64
	Longitude float64
	Altitude  int
}

// Airline is one row of the airlines table.
type Airline struct {
	ID       int64
	Name     string
	Alias    string
	IATA     string
	ICAO     string
	Callsign string
	Country  string
	Active   bool
}

// RouteGroup aggregates all routes between one airport pair: how many
// airlines fly it and their names joined with ", ".
type RouteGroup struct {
	SourceID      int64
	DestID        int64
	SourceName    string
	SourceIATA    string
	SourceCity    string
	SourceCountry string
	DestName      string
	DestIATA      string
	DestCity      string
	DestCountry   string
	AirlineCount  int
	Airlines      string
}

// Hub is an airport aggregated with its outbound connectivity.
type Hub struct {
	AirportID        int64
	Name             string
	IATA             string
	City             string
	Country          string
	DestinationCount int
	AirlineCount     int
}

// DirectRoute is a single nonstop connection between two airports,
// with the airline operating it.
type DirectRoute struct {
	AirlineName string
	AirlineIATA string
	SourceIATA  string
	SourceName  string
	SourceCity  string
	DestIATA    string
	DestName    string
	DestCity    string
	Stops       int
}

// OneStopRoute is a two-leg connection through an intermediate airport.
type OneStopRoute struct {
	FirstAirline  string
	ViaIATA       string
	ViaName       string
	ViaCity       string
	SecondAirline string
	SourceIATA    string
	DestIATA      string
}

// BusiestRoute is an airport pair ranked by how many airlines serve it.
type BusiestRoute struct {
	SourceIATA   string
	SourceCity   string
	DestIATA     string
	DestCity     string
	AirlineCount int
}

// LongestRoute is an airport pair ranked by great-circle distance.
type LongestRoute struct {
	SourceIATA string
	SourceCity string
	DestIATA   string
	DestCity   string
	DistanceKM float64
}
