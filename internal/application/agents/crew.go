package agents

import (
	"context"
	"fmt"

	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/aescanero/tripplanner/pkg/ports"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sub-task names, used for errors, metrics and events.
const (
	TaskTrends    = "trends"
	TaskItinerary = "itinerary"
	TaskHotels    = "hotels"
	TaskFoods     = "foods"
	TaskGallery   = "gallery"
)

// Limits bounds the size of each section.
type Limits struct {
	Trends        int
	Hotels        int
	Foods         int
	Gallery       int
	TrendImages   int
	HotelImages   int
	FoodImages    int
	ImageParallel int
}

// DefaultLimits returns the section sizes used by the planner.
func DefaultLimits() Limits {
	return Limits{
		Trends:        5,
		Hotels:        3,
		Foods:         4,
		Gallery:       6,
		TrendImages:   3,
		HotelImages:   2,
		FoodImages:    1,
		ImageParallel: 4,
	}
}

// Crew implements ports.SubTasks
type Crew struct {
	generator ports.TextGenerator
	images    ports.ImageSearcher
	validate  *validator.Validate
	limits    Limits
	logger    *zap.Logger
}

var _ ports.SubTasks = (*Crew)(nil)

// NewCrew creates the planning sub-tasks
func NewCrew(generator ports.TextGenerator, images ports.ImageSearcher, limits Limits, logger *zap.Logger) *Crew {
	return &Crew{
		generator: generator,
		images:    images,
		validate:  validator.New(),
		limits:    limits,
		logger:    logger,
	}
}

// Trends returns trending spots at destination, each with an image when one is found.
func (c *Crew) Trends(ctx context.Context, destination string) ([]domain.Spot, error) {
	items, err := generateList[trendItem](ctx, c, TaskTrends, trendsPrompt(destination, c.limits.Trends))
	if err != nil {
		return nil, err
	}

	spots := make([]domain.Spot, 0, len(items))
	for _, it := range limit(items, c.limits.Trends) {
		spots = append(spots, domain.Spot{
			Name: it.Name,
			Desc: it.Desc,
			Lat:  it.Lat.ptr(),
			Lon:  it.Lon.ptr(),
		})
	}

	c.enrich(ctx, len(spots), c.limits.TrendImages, func(i int) string {
		return fmt.Sprintf("%s %s", spots[i].Name, destination)
	}, func(i int, url string) {
		spots[i].Image = url
	})

	return spots, nil
}

// Itinerary builds a day-by-day plan around spots.
func (c *Crew) Itinerary(ctx context.Context, destination, mood string, budget domain.BudgetInfo, spots []domain.Spot) ([]domain.DayPlan, error) {
	items, err := generateList[dayItem](ctx, c, TaskItinerary, itineraryPrompt(destination, mood, budget, spots))
	if err != nil {
		return nil, err
	}

	days := make([]domain.DayPlan, 0, len(items))
	for _, it := range items {
		cost := budget.PerDay
		if est := it.EstCost.ptr(); est != nil {
			cost = *est
		}
		places := it.Places
		if places == nil {
			places = []string{}
		}
		days = append(days, domain.DayPlan{
			Day:     int(it.Day),
			Summary: it.Summary,
			Places:  places,
			EstCost: cost,
		})
	}
	return days, nil
}

// Hotels suggests places to stay within the per-night hotel budget.
func (c *Crew) Hotels(ctx context.Context, destination string, budget domain.BudgetInfo) ([]domain.Hotel, error) {
	items, err := generateList[hotelItem](ctx, c, TaskHotels, hotelsPrompt(destination, budget, c.limits.Hotels))
	if err != nil {
		return nil, err
	}

	hotels := make([]domain.Hotel, 0, len(items))
	for _, it := range limit(items, c.limits.Hotels) {
		hotels = append(hotels, domain.Hotel{
			Name:          it.Name,
			PricePerNight: string(it.PricePerNight),
			Rating:        it.Rating.ptr(),
		})
	}

	c.enrich(ctx, len(hotels), c.limits.HotelImages, func(i int) string {
		return fmt.Sprintf("%s %s", hotels[i].Name, destination)
	}, func(i int, url string) {
		hotels[i].Image = url
	})

	return hotels, nil
}

// Foods suggests restaurants and food spots matching mood.
func (c *Crew) Foods(ctx context.Context, destination, mood string, _ domain.BudgetInfo) ([]domain.FoodSpot, error) {
	items, err := generateList[foodItem](ctx, c, TaskFoods, foodsPrompt(destination, mood, c.limits.Foods))
	if err != nil {
		return nil, err
	}

	foods := make([]domain.FoodSpot, 0, len(items))
	for _, it := range limit(items, c.limits.Foods) {
		foods = append(foods, domain.FoodSpot{
			Name:  it.Name,
			Type:  string(it.Cuisine),
			Price: string(it.PriceRange),
		})
	}

	c.enrich(ctx, len(foods), c.limits.FoodImages, func(i int) string {
		return fmt.Sprintf("%s %s food", foods[i].Name, destination)
	}, func(i int, url string) {
		foods[i].Image = url
	})

	return foods, nil
}

// Gallery returns photos of the destination.
func (c *Crew) Gallery(ctx context.Context, destination string) ([]string, error) {
	urls, err := c.images.Search(ctx, destination, c.limits.Gallery)
	if err != nil {
		return nil, &domain.SubTaskError{Task: TaskGallery, Err: err}
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

// generateList prompts the generator and decodes a validated list.
func generateList[T any](ctx context.Context, c *Crew, task, prompt string) ([]T, error) {
	raw, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, &domain.SubTaskError{Task: task, Err: err}
	}

	items, err := decodeList[T](c.validate, raw)
	if err != nil {
		c.logger.Warn("unusable sub-task response",
			zap.String("task", task),
			zap.Int("response_bytes", len(raw)),
			zap.Error(err))
		return nil, &domain.SubTaskError{Task: task, Err: err}
	}
	return items, nil
}

// enrich looks up one image per item. Lookups run with bounded parallelism
// and failures leave the image empty.
func (c *Crew) enrich(ctx context.Context, n, perQuery int, query func(int) string, set func(int, string)) {
	if c.images == nil || n == 0 {
		return
	}

	var g errgroup.Group
	if c.limits.ImageParallel > 0 {
		g.SetLimit(c.limits.ImageParallel)
	}

	for i := 0; i < n; i++ {
		g.Go(func() error {
			q := query(i)
			urls, err := c.images.Search(ctx, q, perQuery)
			if err != nil {
				c.logger.Debug("image lookup failed",
					zap.String("query", q),
					zap.Error(err))
				return nil
			}
			if len(urls) > 0 {
				set(i, urls[0])
			}
			return nil
		})
	}
	_ = g.Wait()
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
