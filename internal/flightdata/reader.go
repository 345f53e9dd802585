package flightdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// DB is the subset of pgx operations the reader needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Reader answers queries over the structured flight tables.
//
// Reader is safe for concurrent use by multiple goroutines.
type Reader struct {
	db     DB
	logger *slog.Logger
}

// NewReader creates a Reader. Logger nil = slog.Default().
func NewReader(db DB, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{db: db, logger: logger}
}

// Airports lists airports that carry an IATA code, ordered by name.
// limit <= 0 means no limit.
func (r *Reader) Airports(ctx context.Context, limit int) ([]Airport, error) {
	rows, err := r.db.Query(ctx, `
		SELECT airport_id, name, city, country, iata, icao,
		       latitude, longitude, altitude
		FROM airports
		WHERE iata <> ''
		ORDER BY name
		LIMIT NULLIF($1, 0)`,
		max(limit, 0))
	if err != nil {
		return nil, fmt.Errorf("listing airports: %w", err)
	}
	defer rows.Close()

	var airports []Airport
	for rows.Next() {
		var a Airport
		err := rows.Scan(&a.ID, &a.Name, &a.City, &a.Country, &a.IATA, &a.ICAO,
			&a.Latitude, &a.Longitude, &a.Altitude)
		if err != nil {
			return nil, fmt.Errorf("scanning airport: %w", err)
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

// AirportByIATA looks up one airport by its three letter code.
func (r *Reader) AirportByIATA(ctx context.Context, iata string) (Airport, error) {
	var a Airport
	err := r.db.QueryRow(ctx, `
		SELECT airport_id, name, city, country, iata, icao,
		       latitude, longitude, altitude
		FROM airports
		WHERE iata = $1`,
		iata).
		Scan(&a.ID, &a.Name, &a.City, &a.Country, &a.IATA, &a.ICAO,
			&a.Latitude, &a.Longitude, &a.Altitude)
	if errors.Is(err, pgx.ErrNoRows) {
		return Airport{}, fmt.Errorf("airport %q: %w", iata, ErrNotFound)
	}
	if err != nil {
		return Airport{}, fmt.Errorf("looking up airport %q: %w", iata, err)
	}
	return a, nil
}

// Airlines lists active airlines that carry an IATA code.
// limit <= 0 means no limit.
func (r *Reader) Airlines(ctx context.Context, limit int) ([]Airline, error) {
	rows, err := r.db.Query(ctx, `
		SELECT airline_id, name, alias, iata, icao, callsign, country, active
		FROM airlines
		WHERE active AND iata <> ''
		ORDER BY name
		LIMIT NULLIF($1, 0)`,
		max(limit, 0))
	if err != nil {
		return nil, fmt.Errorf("listing airlines: %w", err)
	}
	defer rows.Close()

	return scanAirlines(rows)
}

// SearchAirlines matches airlines by name, IATA, ICAO, or country,
// active first.
func (r *Reader) SearchAirlines(ctx context.Context, term string) ([]Airline, error) {
	pattern := "%" + term + "%"
	rows, err := r.db.Query(ctx, `
		SELECT airline_id, name, alias, iata, icao, callsign, country, active
		FROM airlines
		WHERE name ILIKE $1 OR iata ILIKE $1 OR icao ILIKE $1 OR country ILIKE $1
		ORDER BY active DESC, name
		LIMIT 20`,
		pattern)
	if err != nil {
		return nil, fmt.Errorf("searching airlines: %w", err)
	}
	defer rows.Close()

	return scanAirlines(rows)
}

func scanAirlines(rows pgx.Rows) ([]Airline, error) {
	var airlines []Airline
	for rows.Next() {
		var a Airline
		err := rows.Scan(&a.ID, &a.Name, &a.Alias, &a.IATA, &a.ICAO,
			&a.Callsign, &a.Country, &a.Active)
		if err != nil {
			return nil, fmt.Errorf("scanning airline: %w", err)
		}
		airlines = append(airlines, a)
	}
	return airlines, rows.Err()
}

// SearchAirports matches airports by name, city, country, or IATA code.
func (r *Reader) SearchAirports(ctx context.Context, term string) ([]Airport, error) {
	pattern := "%" + term + "%"
	rows, err := r.db.Query(ctx, `
		SELECT airport_id, name, city, country, iata, icao,
		       latitude, longitude, altitude
		FROM airports
		WHERE name ILIKE $1 OR city ILIKE $1 OR country ILIKE $1 OR iata ILIKE $1
		LIMIT 10`,
		pattern)
	if err != nil {
		return nil, fmt.Errorf("searching airports: %w", err)
	}
	defer rows.Close()

	var airports []Airport
	for rows.Next() {
		var a Airport
		err := rows.Scan(&a.ID, &a.Name, &a.City, &a.Country, &a.IATA, &a.ICAO,
			&a.Latitude, &a.Longitude, &a.Altitude)
		if err != nil {
			return nil, fmt.Errorf("scanning airport: %w", err)
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

// RouteGroups aggregates routes per airport pair served by at least
// minAirlines carriers, busiest pairs first. limit <= 0 means no limit.
func (r *Reader) RouteGroups(ctx context.Context, minAirlines, limit int) ([]RouteGroup, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.source_airport_id, r.dest_airport_id,
		       sa.name, sa.iata, sa.city, sa.country,
		       da.name, da.iata, da.city, da.country,
		       COUNT(*) AS airline_count,
		       COALESCE(string_agg(DISTINCT al.name, ', '), '')
		FROM routes r
		JOIN airports sa ON r.source_airport_id = sa.airport_id
		JOIN airports da ON r.dest_airport_id = da.airport_id
		LEFT JOIN airlines al ON r.airline_id = al.airline_id
		WHERE sa.iata <> '' AND da.iata <> ''
		GROUP BY r.source_airport_id, r.dest_airport_id,
		         sa.name, sa.iata, sa.city, sa.country,
		         da.name, da.iata, da.city, da.country
		HAVING COUNT(*) >= $1
		ORDER BY COUNT(*) DESC
		LIMIT NULLIF($2, 0)`,
		minAirlines, max(limit, 0))
	if err != nil {
		return nil, fmt.Errorf("aggregating route groups: %w", err)
	}
	defer rows.Close()

	var groups []RouteGroup
	for rows.Next() {
		var g RouteGroup
		err := rows.Scan(&g.SourceID, &g.DestID,
			&g.SourceName, &g.SourceIATA, &g.SourceCity, &g.SourceCountry,
			&g.DestName, &g.DestIATA, &g.DestCity, &g.DestCountry,
			&g.AirlineCount, &g.Airlines)
		if err != nil {
			return nil, fmt.Errorf("scanning route group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Hubs lists airports connecting to at least minDestinations distinct
// destinations, best connected first.
func (r *Reader) Hubs(ctx context.Context, minDestinations, limit int) ([]Hub, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT a.airport_id, a.name, a.iata, a.city, a.country,
		       COUNT(DISTINCT r.dest_airport_id) AS destination_count,
		       COUNT(DISTINCT r.airline_id) AS airline_count
		FROM airports a
		JOIN routes r ON a.airport_id = r.source_airport_id
		WHERE a.iata <> ''
		GROUP BY a.airport_id, a.name, a.iata, a.city, a.country
		HAVING COUNT(DISTINCT r.dest_airport_id) >= $1
		ORDER BY COUNT(DISTINCT r.dest_airport_id) DESC
		LIMIT $2`,
		minDestinations, limit)
	if err != nil {
		return nil, fmt.Errorf("aggregating hubs: %w", err)
	}
	defer rows.Close()

	var hubs []Hub
	for rows.Next() {
		var h Hub
		err := rows.Scan(&h.AirportID, &h.Name, &h.IATA, &h.City, &h.Country,
			&h.DestinationCount, &h.AirlineCount)
		if err != nil {
			return nil, fmt.Errorf("scanning hub: %w", err)
		}
		hubs = append(hubs, h)
	}
	return hubs, rows.Err()
}

// DirectRoutes lists nonstop connections between two airports, ordered
// by airline name.
func (r *Reader) DirectRoutes(ctx context.Context, sourceIATA, destIATA string) ([]DirectRoute, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.name, a.iata,
		       src.iata, src.name, src.city,
		       dst.iata, dst.name, dst.city,
		       r.stops
		FROM routes r
		JOIN airlines a ON r.airline_id = a.airline_id
		JOIN airports src ON r.source_airport_id = src.airport_id
		JOIN airports dst ON r.dest_airport_id = dst.airport_id
		WHERE src.iata = $1 AND dst.iata = $2
		ORDER BY a.name`,
		sourceIATA, destIATA)
	if err != nil {
		return nil, fmt.Errorf("finding direct routes: %w", err)
	}
	defer rows.Close()

	return scanDirectRoutes(rows)
}

// RoutesFromAirport lists all departures from one airport, ordered by
// destination city.
func (r *Reader) RoutesFromAirport(ctx context.Context, iata string) ([]DirectRoute, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.name, a.iata,
		       src.iata, src.name, src.city,
		       dst.iata, dst.name, dst.city,
		       r.stops
		FROM routes r
		JOIN airlines a ON r.airline_id = a.airline_id
		JOIN airports src ON r.source_airport_id = src.airport_id
		JOIN airports dst ON r.dest_airport_id = dst.airport_id
		WHERE src.iata = $1
		ORDER BY dst.city`,
		iata)
	if err != nil {
		return nil, fmt.Errorf("listing routes from %s: %w", iata, err)
	}
	defer rows.Close()

	return scanDirectRoutes(rows)
}

func scanDirectRoutes(rows pgx.Rows) ([]DirectRoute, error) {
	var routes []DirectRoute
	for rows.Next() {
		var d DirectRoute
		err := rows.Scan(&d.AirlineName, &d.AirlineIATA,
			&d.SourceIATA, &d.SourceName, &d.SourceCity,
			&d.DestIATA, &d.DestName, &d.DestCity,
			&d.Stops)
		if err != nil {
			return nil, fmt.Errorf("scanning route: %w", err)
		}
		routes = append(routes, d)
	}
	return routes, rows.Err()
}

// OneStopRoutes lists two-leg connections between two airports through
// any intermediate airport. Capped at 20; the join explodes on busy pairs.
func (r *Reader) OneStopRoutes(ctx context.Context, sourceIATA, destIATA string) ([]OneStopRoute, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a1.name, conn.iata, conn.name, conn.city, a2.name,
		       src.iata, dst.iata
		FROM routes r1
		JOIN routes r2 ON r1.dest_airport_id = r2.source_airport_id
		JOIN airports src ON r1.source_airport_id = src.airport_id
		JOIN airports conn ON r1.dest_airport_id = conn.airport_id
		JOIN airports dst ON r2.dest_airport_id = dst.airport_id
		JOIN airlines a1 ON r1.airline_id = a1.airline_id
		JOIN airlines a2 ON r2.airline_id = a2.airline_id
		WHERE src.iata = $1 AND dst.iata = $2
		LIMIT 20`,
		sourceIATA, destIATA)
	if err != nil {
		return nil, fmt.Errorf("finding one-stop routes: %w", err)
	}
	defer rows.Close()

	var routes []OneStopRoute
	for rows.Next() {
		var o OneStopRoute
		err := rows.Scan(&o.FirstAirline, &o.ViaIATA, &o.ViaName, &o.ViaCity,
			&o.SecondAirline, &o.SourceIATA, &o.DestIATA)
		if err != nil {
			return nil, fmt.Errorf("scanning one-stop route: %w", err)
		}
		routes = append(routes, o)
	}
	return routes, rows.Err()
}

// BusiestRoutes ranks airport pairs by how many distinct airlines serve
// them. limit <= 0 defaults to 10.
func (r *Reader) BusiestRoutes(ctx context.Context, limit int) ([]BusiestRoute, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx, `
		SELECT src.iata, src.city, dst.iata, dst.city,
		       COUNT(DISTINCT r.airline_id) AS airline_count
		FROM routes r
		JOIN airports src ON r.source_airport_id = src.airport_id
		JOIN airports dst ON r.dest_airport_id = dst.airport_id
		GROUP BY r.source_airport_id, r.dest_airport_id,
		         src.iata, src.city, dst.iata, dst.city
		ORDER BY airline_count DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("ranking busiest routes: %w", err)
	}
	defer rows.Close()

	var routes []BusiestRoute
	for rows.Next() {
		var b BusiestRoute
		err := rows.Scan(&b.SourceIATA, &b.SourceCity, &b.DestIATA, &b.DestCity, &b.AirlineCount)
		if err != nil {
			return nil, fmt.Errorf("scanning busiest route: %w", err)
		}
		routes = append(routes, b)
	}
	return routes, rows.Err()
}

// LongestRoutes ranks routes by great-circle distance, computed with the
// haversine formula over an Earth radius of 6371 km. limit <= 0
// defaults to 10.
func (r *Reader) LongestRoutes(ctx context.Context, limit int) ([]LongestRoute, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT src.iata, src.city, dst.iata, dst.city,
		       (6371 * acos(LEAST(1.0,
		           cos(radians(src.latitude)) * cos(radians(dst.latitude)) *
		           cos(radians(dst.longitude) - radians(src.longitude)) +
		           sin(radians(src.latitude)) * sin(radians(dst.latitude))
		       ))) AS distance_km
		FROM routes r
		JOIN airports src ON r.source_airport_id = src.airport_id
		JOIN airports dst ON r.dest_airport_id = dst.airport_id
		ORDER BY distance_km DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("ranking longest routes: %w", err)
	}
	defer rows.Close()

	var routes []LongestRoute
	for rows.Next() {
		var l LongestRoute
		err := rows.Scan(&l.SourceIATA, &l.SourceCity, &l.DestIATA, &l.DestCity, &l.DistanceKM)
		if err != nil {
			return nil, fmt.Errorf("scanning longest route: %w", err)
		}
		routes = append(routes, l)
	}
	return routes, rows.Err()
}
