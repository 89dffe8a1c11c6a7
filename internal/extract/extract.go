// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package extract turns free-form language model output into a structured
// {sql, explanation} result.
//
// Model output has no reliable contract: the statement may arrive as a JSON
// object, inside a fenced code block, as a "sql": key buried in prose, or as bare
// text. An Extractor tries an ordered list of strategies, first success wins,
// and always falls back to the verbatim text, so extraction never fails.
package extract

// Sentinel is the marker the model emits when a request is not a database question.
const Sentinel = "INVALID_QUERY"

// DefaultExplanation is used when the model gave no usable explanation.
const DefaultExplanation = "Here is your query."

// Result is the canonical output of generation or repair.
type Result struct {
	SQL         string `json:"sql"`
	Explanation string `json:"explanation"`
}

// Strategy names, reported in Extraction.Strategy.
const (
	StrategySentinel   = "sentinel"
	StrategyStructured = "structured"
	StrategyFenced     = "fenced"
	StrategyKeyValue   = "keyvalue"
	StrategyVerbatim   = "verbatim"
)

// Extraction is the outcome of one normalization pass.
type Extraction struct {
	Result
	// Invalid is set when the model returned the sentinel; Result is empty then.
	Invalid bool
	// Strategy names the strategy that produced Result.
	Strategy string
}

// Degraded reports whether only the verbatim fallback produced the result.
func (e Extraction) Degraded() bool { return e.Strategy == StrategyVerbatim }

// Strategy tries to produce a result from raw model text.
type Strategy struct {
	Name string
	Fn   func(raw string) (Result, bool)
}

// Extractor runs strategies in order. It holds no mutable state and is safe
// for concurrent use.
type Extractor struct {
	labels     []string
	fallback   string
	strategies []Strategy
}

// New returns an extractor whose explanation parser keeps the text after any
// of labels, using fallback when the model gave none.
func New(fallback string, labels ...string) *Extractor {
	x := &Extractor{labels: labels, fallback: fallback}
	x.strategies = []Strategy{
		{Name: StrategyStructured, Fn: x.structured},
		{Name: StrategyFenced, Fn: x.fenced},
		{Name: StrategyKeyValue, Fn: x.keyValue},
	}
	return x
}

// Generation is the extractor for answers to natural-language requests.
var Generation = New(DefaultExplanation, "Explication:", "Explanation:")

// Strategies returns the ordered strategies tried before the verbatim fallback.
func (x *Extractor) Strategies() []Strategy {
	out := make([]Strategy, len(x.strategies))
	copy(out, x.strategies)
	return out
}

// Extract normalizes raw model text into an Extraction.
func (x *Extractor) Extract(raw string) Extraction {
	if containsSentinel(raw) {
		return Extraction{Invalid: true, Strategy: StrategySentinel}
	}
	for _, s := range x.strategies {
		if res, ok := s.Fn(raw); ok {
			return Extraction{Result: res, Strategy: s.Name}
		}
	}
	return Extraction{Result: x.verbatim(raw), Strategy: StrategyVerbatim}
}

// Explanation derives an explanation from the comment lines of text.
func (x *Extractor) Explanation(text string) string {
	return Explanation(text, x.fallback, x.labels...)
}
