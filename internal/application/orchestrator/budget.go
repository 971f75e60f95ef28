package orchestrator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aescanero/tripplanner/pkg/domain"
)

const dateLayout = "2006-01-02"

var errNonPositiveBudget = errors.New("budget must be positive")

// ComputeBudget derives the budget breakdown for a trip. An unparseable or
// non-positive budget yields a *domain.BudgetParseError together with a
// zero-valued breakdown over the default trip length, so callers can keep
// planning.
func ComputeBudget(budget, dates string) (domain.BudgetInfo, error) {
	total, err := parseBudget(budget)
	if err != nil {
		return budgetInfo(0, domain.DefaultTripDays), &domain.BudgetParseError{Input: budget, Err: err}
	}

	return budgetInfo(total, TripDays(dates)), nil
}

// TripDays returns the inclusive number of days in a "start to end" range,
// or the default trip length when the range cannot be parsed.
func TripDays(dates string) int {
	parts := strings.Split(dates, "to")
	if len(parts) != 2 {
		return domain.DefaultTripDays
	}

	start, err := time.Parse(dateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return domain.DefaultTripDays
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.DefaultTripDays
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return domain.DefaultTripDays
	}
	return days
}

func parseBudget(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	total, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %w", err)
	}
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return 0, errNonPositiveBudget
	}
	return total, nil
}

func budgetInfo(total float64, days int) domain.BudgetInfo {
	perDay := round2(total / float64(days))
	return domain.BudgetInfo{
		TotalBudget: total,
		Days:        days,
		PerDay:      perDay,
		Breakdown: domain.Breakdown{
			Hotel:  round2(perDay * domain.HotelShare),
			Food:   round2(perDay * domain.FoodShare),
			Travel: round2(perDay * domain.TravelShare),
			Misc:   round2(perDay * domain.MiscShare),
		},
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
