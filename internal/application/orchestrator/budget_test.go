package orchestrator

import (
	"errors"
	"math"
	"testing"

	"github.com/aescanero/tripplanner/pkg/domain"
)

func TestComputeBudgetJaipur(t *testing.T) {
	info, err := ComputeBudget("50000", "2025-12-10 to 2025-12-15")
	if err != nil {
		t.Fatalf("ComputeBudget() error = %v", err)
	}
	if info.Days != 6 {
		t.Errorf("Days = %d, want 6", info.Days)
	}
	if info.PerDay != 8333.33 {
		t.Errorf("PerDay = %v, want 8333.33", info.PerDay)
	}
	if math.Abs(info.Breakdown.Hotel-3333.33) > 0.005 {
		t.Errorf("Breakdown.Hotel = %v, want 3333.33", info.Breakdown.Hotel)
	}
}

func TestComputeBudgetInvalid(t *testing.T) {
	tests := []struct {
		name   string
		budget string
	}{
		{"text", "abc"},
		{"zero", "0"},
		{"negative", "-100"},
		{"nan", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ComputeBudget(tt.budget, "2025-12-10 to 2025-12-15")

			var parseErr *domain.BudgetParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected BudgetParseError, got %v", err)
			}
			if errors.Is(err, domain.ErrInvalidRequest) {
				t.Error("budget errors must not be invalid-request errors")
			}
			if info.Days != domain.DefaultTripDays {
				t.Errorf("Days = %d, want %d", info.Days, domain.DefaultTripDays)
			}
			if info.TotalBudget != 0 || info.PerDay != 0 {
				t.Errorf("expected zero budget, got %+v", info)
			}
		})
	}
}

func TestTripDays(t *testing.T) {
	tests := []struct {
		dates string
		want  int
	}{
		{"2025-12-10 to 2025-12-15", 6},
		{"2025-12-10 to 2025-12-10", 1},
		{" 2025-02-27 to 2025-03-02 ", 4},
		{"2025-12-15 to 2025-12-10", domain.DefaultTripDays},
		{"", domain.DefaultTripDays},
		{"next week", domain.DefaultTripDays},
		{"2025-12-10 - 2025-12-15", domain.DefaultTripDays},
	}

	for _, tt := range tests {
		t.Run(tt.dates, func(t *testing.T) {
			if got := TripDays(tt.dates); got != tt.want {
				t.Errorf("TripDays(%q) = %d, want %d", tt.dates, got, tt.want)
			}
		})
	}
}

func TestBreakdownProperties(t *testing.T) {
	budgets := []string{"1", "999.99", "50000", "1,000,000", "12345.67", "7"}
	dates := []string{"", "2025-01-01 to 2025-01-03", "2025-01-01 to 2025-01-31"}

	for _, b := range budgets {
		for _, d := range dates {
			info, err := ComputeBudget(b, d)
			if err != nil {
				t.Fatalf("ComputeBudget(%q, %q) error = %v", b, d, err)
			}
			if info.Days < 1 {
				t.Errorf("Days = %d, want >= 1", info.Days)
			}
			if diff := math.Abs(info.Breakdown.Sum() - info.PerDay); diff > 0.021 {
				t.Errorf("breakdown sum %v differs from per_day %v", info.Breakdown.Sum(), info.PerDay)
			}
			if diff := math.Abs(info.PerDay*float64(info.Days) - info.TotalBudget); diff > 0.005*float64(info.Days) {
				t.Errorf("per_day*days = %v, total = %v", info.PerDay*float64(info.Days), info.TotalBudget)
			}
		}
	}
}
