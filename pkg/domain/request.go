package domain

import (
	"fmt"
	"strings"
)

// DefaultMood is used when a request arrives without a mood.
const DefaultMood = "relax"

// Request is a trip plan request as submitted by a user
type Request struct {
	Destination string `json:"destination" yaml:"destination" validate:"required"`
	Dates       string `json:"dates" yaml:"dates"`
	Budget      string `json:"budget" yaml:"budget" validate:"required"`
	Mood        string `json:"mood" yaml:"mood"`
}

// Normalize returns a copy with every field trimmed and the mood defaulted.
func (r Request) Normalize() Request {
	n := Request{
		Destination: strings.TrimSpace(r.Destination),
		Dates:       strings.TrimSpace(r.Dates),
		Budget:      strings.TrimSpace(r.Budget),
		Mood:        strings.TrimSpace(r.Mood),
	}
	if n.Mood == "" {
		n.Mood = DefaultMood
	}
	return n
}

// CacheKey derives the deterministic cache key for the request. Destination
// and mood are case-folded; all fields are trimmed.
func (r Request) CacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		strings.ToLower(strings.TrimSpace(r.Destination)),
		strings.TrimSpace(r.Dates),
		strings.TrimSpace(r.Budget),
		strings.ToLower(strings.TrimSpace(r.Mood)),
	)
}

// ExampleRequest returns the placeholder request shown to new users.
func ExampleRequest() Request {
	return Request{
		Destination: "Jaipur, India",
		Dates:       "2025-12-10 to 2025-12-15",
		Budget:      "50000",
		Mood:        "adventure",
	}
}
