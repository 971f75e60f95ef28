package orchestrator

import (
	"errors"
	"strings"
	"testing"

	"github.com/aescanero/tripplanner/pkg/domain"
)

func TestValidator(t *testing.T) {
	tests := []struct {
		name    string
		req     domain.Request
		wantErr string
	}{
		{"valid", domain.ExampleRequest(), ""},
		{"no mood", domain.Request{Destination: "Goa", Budget: "100"}, ""},
		{"no destination", domain.Request{Budget: "100"}, "destination required"},
		{"blank destination", domain.Request{Destination: "   ", Budget: "100"}, "destination required"},
		{"no budget", domain.Request{Destination: "Goa"}, "budget required"},
		{"empty", domain.Request{}, "destination and budget required"},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
