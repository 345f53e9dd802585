package search

import "github.com/skychat/skychat/internal/corpus"

// Weights maps document types to reranking multipliers. Types without an
// entry rank with weight 1.0.
type Weights map[corpus.DocType]float64

// For returns the multiplier for a document type.
func (w Weights) For(t corpus.DocType) float64 {
	if boost, ok := w[t]; ok {
		return boost
	}
	return 1.0
}

// DefaultWeights favor structured flight facts over general background:
// hub airport documents rank highest, general knowledge is slightly
// demoted so it fills in only when nothing specific matches.
func DefaultWeights() Weights {
	return Weights{
		corpus.TypeHub:     1.1,
		corpus.TypeRoute:   1.05,
		corpus.TypeAirline: 1.0,
		corpus.TypeGeneral: 0.95,
	}
}

// WeightsFromConfig converts the configured map keyed by raw document
// type strings. Nil or empty input yields DefaultWeights().
func WeightsFromConfig(raw map[string]float64) Weights {
	if len(raw) == 0 {
		return DefaultWeights()
	}
	w := make(Weights, len(raw))
	for k, v := range raw {
		w[corpus.DocType(k)] = v
	}
	return w
}
