package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/skychat/skychat/internal/flightdata"
)

// Flights provides the structured rows the builder turns into documents.
// Satisfied by *flightdata.Reader.
type Flights interface {
	Airports(ctx context.Context, limit int) ([]flightdata.Airport, error)
	Airlines(ctx context.Context, limit int) ([]flightdata.Airline, error)
	RouteGroups(ctx context.Context, minAirlines, limit int) ([]flightdata.RouteGroup, error)
	Hubs(ctx context.Context, minDestinations, limit int) ([]flightdata.Hub, error)
}

// DocumentStore is the persistence the builder writes through.
// Satisfied by *Store.
type DocumentStore interface {
	InsertDocuments(ctx context.Context, docs []Document) ([]int64, error)
}

// BuildLimits caps how much flight data each build stage processes.
type BuildLimits struct {
	Airports           int
	Airlines           int
	Routes             int
	RouteMinAirlines   int
	HubMinDestinations int
}

// DefaultBuildLimits match the curated knowledge base size the retrieval
// pipeline is tuned for.
func DefaultBuildLimits() BuildLimits {
	return BuildLimits{
		Airports:           500,
		Airlines:           300,
		Routes:             1000,
		RouteMinAirlines:   2,
		HubMinDestinations: 50,
	}
}

// Builder generates knowledge documents from structured flight data and
// curated aviation texts.
type Builder struct {
	flights Flights
	store   DocumentStore
	logger  *slog.Logger
}

// NewBuilder creates a Builder. Logger nil = slog.Default().
func NewBuilder(flights Flights, store DocumentStore, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{flights: flights, store: store, logger: logger}
}

// islandNations are countries mentioned as island nations in airport
// documents, so geographic queries like "airports on islands" retrieve them.
var islandNations = map[string]bool{
	"Iceland": true, "New Zealand": true, "Japan": true, "Philippines": true,
	"Indonesia": true, "United Kingdom": true, "Ireland": true, "Cuba": true,
	"Jamaica": true, "Haiti": true, "Dominican Republic": true, "Bahamas": true,
	"Fiji": true, "Maldives": true, "Malta": true, "Cyprus": true,
	"Sri Lanka": true, "Madagascar": true, "Singapore": true, "Taiwan": true,
	"Mauritius": true, "Seychelles": true, "Cape Verde": true, "Comoros": true,
	"Vanuatu": true, "Samoa": true, "Tonga": true, "Kiribati": true,
	"Marshall Islands": true, "Micronesia": true, "Palau": true,
	"Antigua and Barbuda": true, "Saint Lucia": true, "Grenada": true,
	"Saint Vincent and the Grenadines": true, "Barbados": true,
	"Trinidad and Tobago": true,
}

// AirportDocuments generates one document per airport with an IATA code.
func (b *Builder) AirportDocuments(ctx context.Context, limit int) ([]Document, error) {
	airports, err := b.flights.Airports(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading airports: %w", err)
	}

	docs := make([]Document, 0, len(airports))
	for _, a := range airports {
		docs = append(docs, Document{
			Type:    TypeAirport,
			Title:   fmt.Sprintf("%s Airport (%s)", a.Name, a.IATA),
			Content: airportContent(a),
			Metadata: map[string]any{
				"iata":      a.IATA,
				"city":      a.City,
				"country":   a.Country,
				"latitude":  a.Latitude,
				"longitude": a.Longitude,
			},
		})
	}

	b.logger.Info("generated airport documents", "count", len(docs))
	return docs, nil
}

func airportContent(a flightdata.Airport) string {
	var parts []string

	first := fmt.Sprintf("%s is an airport with IATA code %s", a.Name, a.IATA)
	if a.ICAO != "" {
		first += fmt.Sprintf(" and ICAO code %s", a.ICAO)
	}
	parts = append(parts, first+".")

	location := fmt.Sprintf("%s, %s", a.City, a.Country)
	if islandNations[a.Country] {
		parts = append(parts, fmt.Sprintf("It is located in %s, which is an island nation.", location))
	} else {
		parts = append(parts, fmt.Sprintf("It is located in %s.", location))
	}

	if a.Latitude != 0 || a.Longitude != 0 {
		parts = append(parts, fmt.Sprintf(
			"The airport is positioned at coordinates %.4f°, %.4f°.", a.Latitude, a.Longitude))
	}

	if a.Altitude != 0 {
		meters := float64(a.Altitude) * 0.3048
		parts = append(parts, fmt.Sprintf(
			"It sits at an altitude of %d feet (%.0f meters).", a.Altitude, meters))
	}

	parts = append(parts, fmt.Sprintf(
		"Travelers can identify this airport by its %s code when booking flights or checking flight information.",
		a.IATA))

	return strings.Join(parts, " ")
}

// AirlineDocuments generates one document per active airline with an
// IATA code.
func (b *Builder) AirlineDocuments(ctx context.Context, limit int) ([]Document, error) {
	airlines, err := b.flights.Airlines(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading airlines: %w", err)
	}

	docs := make([]Document, 0, len(airlines))
	for _, a := range airlines {
		docs = append(docs, Document{
			Type:    TypeAirline,
			Title:   fmt.Sprintf("%s (%s)", a.Name, a.IATA),
			Content: airlineContent(a),
			Metadata: map[string]any{
				"airline_id": a.ID,
				"iata":       a.IATA,
				"icao":       a.ICAO,
				"country":    a.Country,
				"active":     a.Active,
			},
		})
	}

	b.logger.Info("generated airline documents", "count", len(docs))
	return docs, nil
}

func airlineContent(a flightdata.Airline) string {
	var parts []string

	first := fmt.Sprintf("%s is an airline operating under IATA code %s", a.Name, a.IATA)
	if a.ICAO != "" {
		first += fmt.Sprintf(" and ICAO code %s", a.ICAO)
	}
	parts = append(parts, first+".")

	// OpenFlights uses \N for missing values.
	if a.Alias != "" && a.Alias != `\N` {
		parts = append(parts, fmt.Sprintf("Also known as %s.", a.Alias))
	}

	parts = append(parts, fmt.Sprintf("This airline is based in %s.", a.Country))

	if a.Callsign != "" && a.Callsign != `\N` {
		parts = append(parts, fmt.Sprintf("Its radio callsign is %s.", a.Callsign))
	}

	if a.Active {
		parts = append(parts, "The airline is currently active and operating flights.")
	}

	return strings.Join(parts, " ")
}

// RouteDocuments generates one document per airport pair served by at
// least minAirlines carriers, busiest pairs first.
func (b *Builder) RouteDocuments(ctx context.Context, minAirlines, limit int) ([]Document, error) {
	routes, err := b.flights.RouteGroups(ctx, minAirlines, limit)
	if err != nil {
		return nil, fmt.Errorf("loading route groups: %w", err)
	}

	docs := make([]Document, 0, len(routes))
	for _, r := range routes {
		docs = append(docs, Document{
			Type:    TypeRoute,
			Title:   fmt.Sprintf("Route: %s to %s", r.SourceIATA, r.DestIATA),
			Content: routeContent(r),
			Metadata: map[string]any{
				"source_airport_id": r.SourceID,
				"dest_airport_id":   r.DestID,
				"source_iata":       r.SourceIATA,
				"dest_iata":         r.DestIATA,
				"source_city":       r.SourceCity,
				"dest_city":         r.DestCity,
				"airline_count":     r.AirlineCount,
			},
		})
	}

	b.logger.Info("generated route documents", "count", len(docs))
	return docs, nil
}

func routeContent(r flightdata.RouteGroup) string {
	var parts []string

	parts = append(parts, fmt.Sprintf(
		"There is a flight route from %s (%s) in %s, %s to %s (%s) in %s, %s.",
		r.SourceName, r.SourceIATA, r.SourceCity, r.SourceCountry,
		r.DestName, r.DestIATA, r.DestCity, r.DestCountry))

	parts = append(parts, fmt.Sprintf(
		"This route is served by %d different airline(s).", r.AirlineCount))

	// Long airline lists add noise without helping retrieval.
	if r.Airlines != "" && len(r.Airlines) < 200 {
		parts = append(parts, fmt.Sprintf("Airlines operating this route include: %s.", r.Airlines))
	}

	parts = append(parts, fmt.Sprintf(
		"Passengers can book flights on this route using the airport codes %s to %s.",
		r.SourceIATA, r.DestIATA))

	return strings.Join(parts, " ")
}

// HubDocuments generates one document per airport with at least
// minDestinations outbound destinations, best connected first.
func (b *Builder) HubDocuments(ctx context.Context, minDestinations int) ([]Document, error) {
	hubs, err := b.flights.Hubs(ctx, minDestinations, 100)
	if err != nil {
		return nil, fmt.Errorf("loading hubs: %w", err)
	}

	docs := make([]Document, 0, len(hubs))
	for _, h := range hubs {
		docs = append(docs, Document{
			Type:    TypeHub,
			Title:   fmt.Sprintf("Major Hub: %s (%s)", h.Name, h.IATA),
			Content: hubContent(h),
			Metadata: map[string]any{
				"airport_id":        h.AirportID,
				"iata":              h.IATA,
				"city":              h.City,
				"country":           h.Country,
				"destination_count": h.DestinationCount,
				"airline_count":     h.AirlineCount,
				"is_hub":            true,
			},
		})
	}

	b.logger.Info("generated hub airport documents", "count", len(docs))
	return docs, nil
}

func hubContent(h flightdata.Hub) string {
	parts := []string{
		fmt.Sprintf("%s (%s) is a major airport hub located in %s, %s.",
			h.Name, h.IATA, h.City, h.Country),
		fmt.Sprintf("As a hub airport, it connects passengers to %d different destinations worldwide.",
			h.DestinationCount),
		fmt.Sprintf("The airport serves as a base or connection point for %d airlines.",
			h.AirlineCount),
		"Hub airports typically offer numerous connecting flight options, " +
			"making them important transit points for international travel.",
	}
	return strings.Join(parts, " ")
}

// BuildComplete builds and inserts the full knowledge base in six stages:
// airports, airlines, routes, hubs, alliances, general knowledge. Each
// stage is inserted as one atomic batch; a stage failure stops the build.
func (b *Builder) BuildComplete(ctx context.Context, limits BuildLimits) (BuildStats, error) {
	var stats BuildStats

	stages := []struct {
		name  string
		build func(context.Context) ([]Document, error)
		count *int
	}{
		{"airports", func(ctx context.Context) ([]Document, error) {
			return b.AirportDocuments(ctx, limits.Airports)
		}, &stats.Airports},
		{"airlines", func(ctx context.Context) ([]Document, error) {
			return b.AirlineDocuments(ctx, limits.Airlines)
		}, &stats.Airlines},
		{"routes", func(ctx context.Context) ([]Document, error) {
			return b.RouteDocuments(ctx, limits.RouteMinAirlines, limits.Routes)
		}, &stats.Routes},
		{"hubs", func(ctx context.Context) ([]Document, error) {
			return b.HubDocuments(ctx, limits.HubMinDestinations)
		}, &stats.Hubs},
		{"alliances", func(context.Context) ([]Document, error) {
			return AllianceDocuments(), nil
		}, &stats.Alliances},
		{"general", func(context.Context) ([]Document, error) {
			return GeneralKnowledgeDocuments(), nil
		}, &stats.General},
	}

	for _, stage := range stages {
		docs, err := stage.build(ctx)
		if err != nil {
			return stats, fmt.Errorf("building %s documents: %w", stage.name, err)
		}
		if _, err := b.store.InsertDocuments(ctx, docs); err != nil {
			return stats, fmt.Errorf("inserting %s documents: %w", stage.name, err)
		}
		*stage.count = len(docs)
		stats.Total += len(docs)
	}

	b.logger.Info("knowledge base build complete",
		"total", stats.Total,
		"airports", stats.Airports,
		"airlines", stats.Airlines,
		"routes", stats.Routes,
		"hubs", stats.Hubs,
		"alliances", stats.Alliances,
		"general", stats.General)

	return stats, nil
}
