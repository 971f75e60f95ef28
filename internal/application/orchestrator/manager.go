package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aescanero/tripplanner/internal/application/agents"
	"github.com/aescanero/tripplanner/internal/application/workers"
	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/aescanero/tripplanner/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Plan outcomes reported to metrics.
const (
	OutcomeInvalid   = "invalid"
	OutcomeCacheHit  = "cache_hit"
	OutcomeCompleted = "completed"
	OutcomeDegraded  = "degraded"
	OutcomeAborted   = "aborted"
)

// Timeouts bounds each stage of a plan
type Timeouts struct {
	Trend  time.Duration
	Task   time.Duration
	FanOut time.Duration
}

// DefaultTimeouts returns the stage bounds used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Trend:  20 * time.Second,
		Task:   8 * time.Second,
		FanOut: 40 * time.Second,
	}
}

// Manager builds trip plans: cache first, then trends, then a bounded fan-out
// of the remaining sections.
type Manager struct {
	cache     ports.CacheStore
	tasks     ports.SubTasks
	pool      *workers.Pool
	eventBus  ports.EventBus
	metrics   ports.MetricsCollector
	validator *Validator
	logger    *zap.Logger
	timeouts  Timeouts

	// Plans in flight, cancelled on shutdown
	active sync.Map // map[string]context.CancelFunc
}

// NewManager creates a new orchestrator manager. eventBus may be nil.
func NewManager(
	cache ports.CacheStore,
	tasks ports.SubTasks,
	pool *workers.Pool,
	eventBus ports.EventBus,
	metrics ports.MetricsCollector,
	validator *Validator,
	logger *zap.Logger,
	timeouts Timeouts,
) *Manager {
	return &Manager{
		cache:     cache,
		tasks:     tasks,
		pool:      pool,
		eventBus:  eventBus,
		metrics:   metrics,
		validator: validator,
		logger:    logger,
		timeouts:  timeouts,
	}
}

// Plan produces a composite plan for req. The only error it returns wraps
// domain.ErrInvalidRequest; every other failure degrades a section to empty.
func (m *Manager) Plan(ctx context.Context, req domain.Request) (*domain.CompositeResult, error) {
	return m.PlanWithID(ctx, uuid.New().String(), req)
}

// PlanWithID is Plan with a caller-chosen plan ID, used to correlate events.
func (m *Manager) PlanWithID(ctx context.Context, planID string, req domain.Request) (*domain.CompositeResult, error) {
	startTime := time.Now()

	if err := m.validator.Validate(req); err != nil {
		m.logger.Info("plan request rejected",
			zap.String("plan_id", planID),
			zap.Error(err))
		m.metrics.RecordPlan(OutcomeInvalid, time.Since(startTime))
		return nil, err
	}

	req = req.Normalize()
	key := req.CacheKey()

	planCtx, cancel := context.WithCancel(ctx)
	m.active.Store(planID, cancel)
	defer func() {
		m.active.Delete(planID)
		cancel()
	}()

	m.publish(planCtx, planID, key, ports.EventTypePlanStarted, map[string]interface{}{
		"destination": req.Destination,
		"dates":       req.Dates,
		"mood":        req.Mood,
	})

	if cached := m.lookup(planCtx, key); cached != nil {
		m.publish(planCtx, planID, key, ports.EventTypePlanCacheHit, nil)
		m.metrics.RecordPlan(OutcomeCacheHit, time.Since(startTime))
		m.logger.Info("plan served from cache",
			zap.String("plan_id", planID),
			zap.String("cache_key", key))
		return cached, nil
	}

	budget, err := ComputeBudget(req.Budget, req.Dates)
	if err != nil {
		m.logger.Info("budget not parseable, using defaults",
			zap.String("plan_id", planID),
			zap.Int("days", budget.Days),
			zap.Error(err))
	}

	result := &domain.CompositeResult{
		Destination: req.Destination,
		Dates:       req.Dates,
		Mood:        req.Mood,
		BudgetInfo:  budget,
	}

	// Trends feed the itinerary, so they finish before the fan-out starts.
	trends := workers.Run(planCtx, m.pool, agents.TaskTrends, m.timeouts.Trend,
		func(ctx context.Context) ([]domain.Spot, error) {
			return m.tasks.Trends(ctx, req.Destination)
		})
	m.sectionDone(planCtx, planID, key, agents.TaskTrends, len(trends.Value()), trends)
	result.Trends = trends.ValueOr(nil)

	failed := m.fanOut(planCtx, planID, key, req, result)
	if !trends.OK() {
		failed++
	}

	result.Normalize()

	outcome := OutcomeCompleted
	switch {
	case planCtx.Err() != nil:
		// Abandoned by the caller or by shutdown; its empty sections are not cached.
		outcome = OutcomeAborted
		m.logger.Info("plan aborted, not caching",
			zap.String("plan_id", planID),
			zap.String("cache_key", key),
			zap.Error(context.Cause(planCtx)))
	case failed > 0:
		outcome = OutcomeDegraded
		m.store(ctx, key, result)
	default:
		m.store(ctx, key, result)
	}
	duration := time.Since(startTime)
	m.metrics.RecordPlan(outcome, duration)
	m.publish(planCtx, planID, key, ports.EventTypePlanCompleted, map[string]interface{}{
		"outcome":         outcome,
		"failed_sections": failed,
		"duration_ms":     duration.Milliseconds(),
	})

	m.logger.Info("plan completed",
		zap.String("plan_id", planID),
		zap.String("cache_key", key),
		zap.String("outcome", outcome),
		zap.Int("failed_sections", failed),
		zap.Duration("duration", duration))

	return result.Clone(), nil
}

// fanOut runs the four independent sections under the outer deadline and
// merges each into result by task identity. It returns the number of
// sections that failed.
func (m *Manager) fanOut(ctx context.Context, planID, key string, req domain.Request, result *domain.CompositeResult) int {
	fanCtx, cancel := context.WithTimeout(ctx, m.timeouts.FanOut)
	defer cancel()

	var (
		itinerary workers.Outcome[[]domain.DayPlan]
		hotels    workers.Outcome[[]domain.Hotel]
		foods     workers.Outcome[[]domain.FoodSpot]
		gallery   workers.Outcome[[]string]
	)
	spots := result.Trends
	budget := result.BudgetInfo

	// Failures are carried in each Outcome; the group only joins the sections.
	var g errgroup.Group
	g.Go(func() error {
		itinerary = workers.Run(fanCtx, m.pool, agents.TaskItinerary, m.timeouts.Task,
			func(ctx context.Context) ([]domain.DayPlan, error) {
				return m.tasks.Itinerary(ctx, req.Destination, req.Mood, budget, spots)
			})
		m.sectionDone(ctx, planID, key, agents.TaskItinerary, len(itinerary.Value()), itinerary)
		return nil
	})
	g.Go(func() error {
		hotels = workers.Run(fanCtx, m.pool, agents.TaskHotels, m.timeouts.Task,
			func(ctx context.Context) ([]domain.Hotel, error) {
				return m.tasks.Hotels(ctx, req.Destination, budget)
			})
		m.sectionDone(ctx, planID, key, agents.TaskHotels, len(hotels.Value()), hotels)
		return nil
	})
	g.Go(func() error {
		foods = workers.Run(fanCtx, m.pool, agents.TaskFoods, m.timeouts.Task,
			func(ctx context.Context) ([]domain.FoodSpot, error) {
				return m.tasks.Foods(ctx, req.Destination, req.Mood, budget)
			})
		m.sectionDone(ctx, planID, key, agents.TaskFoods, len(foods.Value()), foods)
		return nil
	})
	g.Go(func() error {
		gallery = workers.Run(fanCtx, m.pool, agents.TaskGallery, m.timeouts.Task,
			func(ctx context.Context) ([]string, error) {
				return m.tasks.Gallery(ctx, req.Destination)
			})
		m.sectionDone(ctx, planID, key, agents.TaskGallery, len(gallery.Value()), gallery)
		return nil
	})
	_ = g.Wait()

	result.Itinerary = itinerary.ValueOr(nil)
	result.Hotels = hotels.ValueOr(nil)
	result.Foods = foods.ValueOr(nil)
	result.Photos = gallery.ValueOr(nil)

	failed := 0
	for _, ok := range []bool{itinerary.OK(), hotels.OK(), foods.OK(), gallery.OK()} {
		if !ok {
			failed++
		}
	}
	return failed
}

// lookup returns a fresh cached plan, or nil. Read failures count as misses.
func (m *Manager) lookup(ctx context.Context, key string) *domain.CompositeResult {
	cached, found, err := m.cache.Get(ctx, key)
	switch {
	case err != nil:
		m.metrics.RecordCacheLookup("error")
		m.logger.Warn("cache read failed, treating as miss",
			zap.String("cache_key", key),
			zap.Error(err))
		return nil
	case !found || cached == nil:
		m.metrics.RecordCacheLookup("miss")
		return nil
	}

	m.metrics.RecordCacheLookup("hit")
	cached.Normalize()
	return cached
}

// store writes the plan to the cache. Failures are logged and dropped.
func (m *Manager) store(ctx context.Context, key string, result *domain.CompositeResult) {
	if err := m.cache.Put(context.WithoutCancel(ctx), key, result); err != nil {
		m.metrics.RecordCacheWrite("error")
		var ioErr *domain.CacheIOError
		if !errors.As(err, &ioErr) {
			err = &domain.CacheIOError{Op: "write", Key: key, Err: err}
		}
		m.logger.Warn("failed to cache plan",
			zap.String("cache_key", key),
			zap.Error(err))
		return
	}
	m.metrics.RecordCacheWrite("ok")
}

type sectionOutcome interface {
	OK() bool
	Status() string
	Err() error
}

// sectionDone publishes the result of one section
func (m *Manager) sectionDone(ctx context.Context, planID, key, section string, count int, out sectionOutcome) {
	if out.OK() {
		m.publish(ctx, planID, key, ports.EventTypeSectionCompleted, map[string]interface{}{
			"section": section,
			"count":   count,
		})
		return
	}

	m.publish(ctx, planID, key, ports.EventTypeSectionFailed, map[string]interface{}{
		"section": section,
		"status":  out.Status(),
		"error":   out.Err().Error(),
	})
}

// publish sends a plan event. Event delivery never affects the plan.
func (m *Manager) publish(ctx context.Context, planID, key string, eventType ports.EventType, data map[string]interface{}) {
	if m.eventBus == nil {
		return
	}

	event := ports.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		PlanID:    planID,
		PlanKey:   key,
		Data:      data,
	}

	if err := m.eventBus.Publish(context.WithoutCancel(ctx), ports.PlanEventsTopic, event); err != nil {
		m.logger.Warn("failed to publish plan event",
			zap.String("plan_id", planID),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}

// ActivePlans returns the number of plans currently being built
func (m *Manager) ActivePlans() int {
	n := 0
	m.active.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// Shutdown cancels every plan in flight
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("shutting down orchestrator manager")

	m.active.Range(func(key, value interface{}) bool {
		if cancel, ok := value.(context.CancelFunc); ok {
			cancel()
		}
		return true
	})

	if err := m.pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down worker pool: %w", err)
	}

	m.logger.Info("orchestrator manager shut down complete")
	return nil
}
