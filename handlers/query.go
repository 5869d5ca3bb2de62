package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Recognized query parameters
const (
	ParamActiveIngredient = "active_ingredient"
	ParamCompany          = "company"
	ParamLimit            = "limit"

	// DefaultSearchLimit applies to the search operations only; listings
	// send no limit unless asked.
	DefaultSearchLimit = "10"
)

var recognizedParams = []string{ParamActiveIngredient, ParamCompany, ParamLimit}

var (
	// ErrMissingQuery is returned when an operation needs a query string
	// and the target has no "?"
	ErrMissingQuery = errors.New("missing query string")
	// ErrMissingParam is returned when a required parameter is absent or empty
	ErrMissingParam = errors.New("missing required query parameter")
	// ErrMalformedQuery is returned when the query string cannot be decoded
	ErrMalformedQuery = errors.New("malformed query string")
)

// QueryParams holds the recognized parameters of a request. A key that
// appears more than once keeps its last value; unknown keys are dropped.
type QueryParams map[string]string

// Get returns the value of key and whether it was present
func (q QueryParams) Get(key string) (string, bool) {
	v, ok := q[key]
	return v, ok
}

// LimitOr returns the limit parameter, or def when none was given.
// A present but empty limit stays empty.
func (q QueryParams) LimitOr(def string) string {
	if v, ok := q[ParamLimit]; ok {
		return v
	}
	return def
}

// Require returns the non-empty value of key or ErrMissingParam
func (q QueryParams) Require(key string) (string, error) {
	v, ok := q[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	return v, nil
}

// ParseQuery decodes a raw query string and keeps the recognized keys
func ParseQuery(rawQuery string) (QueryParams, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuery, err)
	}

	params := make(QueryParams, len(recognizedParams))
	for _, key := range recognizedParams {
		if v := values[key]; len(v) > 0 {
			params[key] = v[len(v)-1]
		}
	}
	return params, nil
}

// splitTarget splits a request target at the first "?"
func splitTarget(target string) (path, rawQuery string, hasQuery bool) {
	return strings.Cut(target, "?")
}

// requiredQuery parses the query of an operation that cannot run without one
func requiredQuery(target string) (QueryParams, error) {
	_, rawQuery, ok := splitTarget(target)
	if !ok {
		return nil, ErrMissingQuery
	}
	return ParseQuery(rawQuery)
}

// optionalQuery parses the query if the target has one
func optionalQuery(target string) (QueryParams, error) {
	_, rawQuery, ok := splitTarget(target)
	if !ok {
		return QueryParams{}, nil
	}
	return ParseQuery(rawQuery)
}
