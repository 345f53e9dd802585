// Package chat routes natural language queries: recognizable flight
// questions get deterministic database answers, everything else falls
// through to the RAG pipeline.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/skychat/skychat/internal/flightdata"
	"github.com/skychat/skychat/internal/rag"
)

// ErrEmptyQuery indicates the query text is empty or whitespace.
var ErrEmptyQuery = errors.New("query cannot be empty")

// Mode selects how queries are answered.
type Mode string

const (
	// ModeClassic answers only recognizable flight questions from the
	// database and rejects everything else.
	ModeClassic Mode = "classic"
	// ModeRAG sends every query through the RAG pipeline.
	ModeRAG Mode = "rag"
	// ModeHybrid tries the deterministic answers first and falls back
	// to RAG. This is the default.
	ModeHybrid Mode = "hybrid"
)

// Reply kinds.
const (
	TypeDirectRoutes      = "direct_routes"
	TypeRoutesWithStop    = "routes_with_stop"
	TypeBusiestRoutes     = "busiest_routes"
	TypeLongestRoutes     = "longest_routes"
	TypeAirportSearch     = "airport_search"
	TypeHubAirports       = "hub_airports"
	TypeAirlineSearch     = "airline_search"
	TypeRoutesFromAirport = "routes_from_airport"
	TypeRAGResponse       = "rag_response"
	TypeUnrecognized      = "unrecognized"
)

// Reply is one answer. Exactly one of Data or RAG is set depending on
// whether the answer came from the database or the pipeline.
type Reply struct {
	Type       string      `json:"type"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	RAG        *rag.Answer `json:"rag,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// FlightFinder answers the deterministic flight questions.
// Satisfied by *flightdata.Reader.
type FlightFinder interface {
	DirectRoutes(ctx context.Context, sourceIATA, destIATA string) ([]flightdata.DirectRoute, error)
	OneStopRoutes(ctx context.Context, sourceIATA, destIATA string) ([]flightdata.OneStopRoute, error)
	BusiestRoutes(ctx context.Context, limit int) ([]flightdata.BusiestRoute, error)
	LongestRoutes(ctx context.Context, limit int) ([]flightdata.LongestRoute, error)
	SearchAirports(ctx context.Context, term string) ([]flightdata.Airport, error)
	SearchAirlines(ctx context.Context, term string) ([]flightdata.Airline, error)
	Hubs(ctx context.Context, minDestinations, limit int) ([]flightdata.Hub, error)
	RoutesFromAirport(ctx context.Context, iata string) ([]flightdata.DirectRoute, error)
}

// Answerer runs the RAG pipeline. Satisfied by *rag.Service.
type Answerer interface {
	Query(ctx context.Context, queryText string, opts rag.QueryOptions) (rag.Answer, error)
}

// IATA codes are three letters after "from"/"to". The pattern is
// deliberately loose; "from London" matches "Lon" and finds nothing,
// which falls through to RAG.
var (
	fromPattern    = regexp.MustCompile(`(?i)from\s+([A-Za-z]{3})`)
	toPattern      = regexp.MustCompile(`(?i)to\s+([A-Za-z]{3})`)
	airportPattern = regexp.MustCompile(`(?i)airport\s+(.+)`)
	airlinePattern = regexp.MustCompile(`(?i)airline\s+(.+)`)
)

const hubMinDestinations = 50

// Router classifies queries and dispatches them.
type Router struct {
	flights FlightFinder
	rag     Answerer
	logger  *slog.Logger
}

// NewRouter creates a Router. rag may be nil, which forces classic
// behavior; logger nil = slog.Default().
func NewRouter(flights FlightFinder, answerer Answerer, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{flights: flights, rag: answerer, logger: logger}
}

// Respond answers one query. Empty mode defaults to ModeHybrid.
func (rt *Router) Respond(ctx context.Context, query string, mode Mode, sessionID string) (Reply, error) {
	if strings.TrimSpace(query) == "" {
		return Reply{}, ErrEmptyQuery
	}
	if mode == "" {
		mode = ModeHybrid
	}

	if mode == ModeRAG {
		return rt.respondRAG(ctx, query, sessionID)
	}

	reply, matched, err := rt.classify(ctx, query)
	if err != nil {
		return Reply{}, err
	}
	if matched {
		return reply, nil
	}

	if mode == ModeHybrid && rt.rag != nil {
		return rt.respondRAG(ctx, query, sessionID)
	}

	return Reply{
		Type:       TypeUnrecognized,
		Message:    "Could not understand your query",
		Suggestion: `Try: "Find flights from JFK to LAX" or "Search airport London" or "Show busiest routes"`,
	}, nil
}

func (rt *Router) respondRAG(ctx context.Context, query, sessionID string) (Reply, error) {
	answer, err := rt.rag.Query(ctx, query, rag.QueryOptions{SessionID: sessionID})
	if err != nil {
		return Reply{}, fmt.Errorf("answering with retrieval: %w", err)
	}
	return Reply{
		Type:    TypeRAGResponse,
		Message: answer.Response,
		RAG:     &answer,
	}, nil
}

// classify matches the query against the deterministic question shapes.
// The second return reports whether any shape matched.
func (rt *Router) classify(ctx context.Context, query string) (Reply, bool, error) {
	lower := strings.ToLower(query)

	if strings.Contains(lower, "flight") || strings.Contains(lower, "route") {
		fromMatch := fromPattern.FindStringSubmatch(query)
		toMatch := toPattern.FindStringSubmatch(query)
		if fromMatch != nil && toMatch != nil {
			return rt.routesBetween(ctx,
				strings.ToUpper(fromMatch[1]), strings.ToUpper(toMatch[1]))
		}

		if strings.Contains(lower, "busiest") {
			routes, err := rt.flights.BusiestRoutes(ctx, 10)
			if err != nil {
				return Reply{}, false, fmt.Errorf("ranking busiest routes: %w", err)
			}
			return Reply{
				Type:    TypeBusiestRoutes,
				Message: "Top 10 busiest routes by number of airlines",
				Data:    routes,
			}, true, nil
		}

		if strings.Contains(lower, "longest") {
			routes, err := rt.flights.LongestRoutes(ctx, 10)
			if err != nil {
				return Reply{}, false, fmt.Errorf("ranking longest routes: %w", err)
			}
			return Reply{
				Type:    TypeLongestRoutes,
				Message: "Top 10 longest routes by distance",
				Data:    routes,
			}, true, nil
		}
	}

	if strings.Contains(lower, "airport") {
		if match := airportPattern.FindStringSubmatch(query); match != nil {
			term := strings.TrimSpace(match[1])
			airports, err := rt.flights.SearchAirports(ctx, term)
			if err != nil {
				return Reply{}, false, fmt.Errorf("searching airports: %w", err)
			}
			return Reply{
				Type:    TypeAirportSearch,
				Message: fmt.Sprintf("Found %d airports matching %q", len(airports), term),
				Data:    airports,
			}, true, nil
		}

		if strings.Contains(lower, "hub") || strings.Contains(lower, "major") {
			hubs, err := rt.flights.Hubs(ctx, hubMinDestinations, 20)
			if err != nil {
				return Reply{}, false, fmt.Errorf("listing hub airports: %w", err)
			}
			return Reply{
				Type:    TypeHubAirports,
				Message: "Major hub airports worldwide",
				Data:    hubs,
			}, true, nil
		}
	}

	if strings.Contains(lower, "airline") {
		if match := airlinePattern.FindStringSubmatch(query); match != nil {
			term := strings.TrimSpace(match[1])
			airlines, err := rt.flights.SearchAirlines(ctx, term)
			if err != nil {
				return Reply{}, false, fmt.Errorf("searching airlines: %w", err)
			}
			return Reply{
				Type:    TypeAirlineSearch,
				Message: fmt.Sprintf("Found %d airlines matching %q", len(airlines), term),
				Data:    airlines,
			}, true, nil
		}
	}

	if match := fromPattern.FindStringSubmatch(query); match != nil && !strings.Contains(lower, "to") {
		code := strings.ToUpper(match[1])
		routes, err := rt.flights.RoutesFromAirport(ctx, code)
		if err != nil {
			return Reply{}, false, fmt.Errorf("listing routes from %s: %w", code, err)
		}
		return Reply{
			Type:    TypeRoutesFromAirport,
			Message: fmt.Sprintf("Found %d routes from %s", len(routes), code),
			Data:    routes,
		}, true, nil
	}

	return Reply{}, false, nil
}

// routesBetween tries nonstop first and widens to one connection when
// nothing flies direct.
func (rt *Router) routesBetween(ctx context.Context, source, dest string) (Reply, bool, error) {
	direct, err := rt.flights.DirectRoutes(ctx, source, dest)
	if err != nil {
		return Reply{}, false, fmt.Errorf("finding direct routes: %w", err)
	}

	if len(direct) == 0 {
		oneStop, err := rt.flights.OneStopRoutes(ctx, source, dest)
		if err != nil {
			return Reply{}, false, fmt.Errorf("finding one-stop routes: %w", err)
		}
		return Reply{
			Type:    TypeRoutesWithStop,
			Message: fmt.Sprintf("Found %d routes from %s to %s with one connection", len(oneStop), source, dest),
			Data:    oneStop,
		}, true, nil
	}

	return Reply{
		Type:    TypeDirectRoutes,
		Message: fmt.Sprintf("Found %d direct routes from %s to %s", len(direct), source, dest),
		Data:    direct,
	}, true, nil
}
