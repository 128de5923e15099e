// Package jq runs jq queries against statwatch snapshots.
package jq

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/itchyny/gojq"
	"github.com/macrat/statwatch/internal/classify"
	api "github.com/macrat/statwatch/lib-statwatch"
)

// jqSeverityRank is a custom jq function to compare severity texts like "degraded".
func jqSeverityRank(x any, _ []any) any {
	str, ok := x.(string)
	if !ok {
		return fmt.Errorf("severity_rank/0: expected a string but got %T (%v)", x, x)
	}
	return api.ParseSeverity(str).Rank()
}

// jqEmoji is a custom jq function to get the indicator emoji of a severity text.
func jqEmoji(x any, _ []any) any {
	str, ok := x.(string)
	if !ok {
		return fmt.Errorf("emoji/0: expected a string but got %T (%v)", x, x)
	}
	return classify.Emoji(api.ParseSeverity(str))
}

// Query is a compiled jq query.
type Query struct {
	Code *gojq.Code
}

// Parse parses a jq query string.
// Empty query is the same as ".".
func Parse(query string) (Query, error) {
	if query == "" {
		query = "."
	}

	q, err := gojq.Parse(query)
	if err != nil {
		return Query{}, err
	}

	c, err := gojq.Compile(
		q,
		gojq.WithFunction("severity_rank", 0, 0, jqSeverityRank),
		gojq.WithFunction("emoji", 0, 0, jqEmoji),
	)
	if err != nil {
		return Query{}, err
	}

	return Query{Code: c}, nil
}

// Normalize converts v into the plain values that gojq can handle, via JSON.
func Normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var x any
	if err := json.Unmarshal(raw, &x); err != nil {
		return nil, err
	}
	return x, nil
}

// Run executes the query on the input and returns all results.
func (q Query) Run(ctx context.Context, input any) ([]any, error) {
	var outputs []any

	iter := q.Code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if halt, ok := v.(*gojq.HaltError); ok {
			if halt.Value() == nil {
				break
			}
			return outputs, halt
		} else if err, ok := v.(error); ok {
			return outputs, err
		}
		outputs = append(outputs, v)
	}

	return outputs, nil
}
