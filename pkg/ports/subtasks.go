package ports

import (
	"context"

	"github.com/aescanero/tripplanner/pkg/domain"
)

// SubTasks is the set of independent computations that make up a plan.
// Each method must honour ctx cancellation at its I/O boundaries.
type SubTasks interface {
	Trends(ctx context.Context, destination string) ([]domain.Spot, error)
	Itinerary(ctx context.Context, destination, mood string, budget domain.BudgetInfo, spots []domain.Spot) ([]domain.DayPlan, error)
	Hotels(ctx context.Context, destination string, budget domain.BudgetInfo) ([]domain.Hotel, error)
	Foods(ctx context.Context, destination, mood string, budget domain.BudgetInfo) ([]domain.FoodSpot, error)
	Gallery(ctx context.Context, destination string) ([]string, error)
}
