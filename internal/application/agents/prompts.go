package agents

import (
	"fmt"
	"strings"

	"github.com/aescanero/tripplanner/pkg/domain"
)

func trendsPrompt(destination string, limit int) string {
	return fmt.Sprintf(
		"Provide up to %d trending tourist spots for '%s'. "+
			"Output only a valid JSON array. Each item must include: name (string), "+
			"desc (one-sentence string). Coordinates (lat, lon) are optional if unknown. "+
			`Example output: [{"name":"Spot 1","desc":"..."}]`,
		limit, destination)
}

func itineraryPrompt(destination, mood string, budget domain.BudgetInfo, spots []domain.Spot) string {
	names := make([]string, 0, len(spots))
	for _, s := range spots {
		names = append(names, s.Name)
	}
	return fmt.Sprintf(
		"Create a %d-day itinerary for %s for someone with mood '%s'. "+
			"Budget per day: %.2f. Use these spots: [%s]. "+
			"Output only a JSON array of objects with fields: day (int), summary (string), "+
			"places (list of names), est_cost (number).",
		budget.Days, destination, mood, budget.PerDay, strings.Join(names, ", "))
}

func hotelsPrompt(destination string, budget domain.BudgetInfo, limit int) string {
	return fmt.Sprintf(
		"Suggest %d hotels in %s appropriate for a per-night hotel budget around %.2f. "+
			"Output only a JSON array of objects: name (string), price_per_night (number or string), "+
			"rating (number 0-5).",
		limit, destination, budget.Breakdown.Hotel)
}

func foodsPrompt(destination, mood string, limit int) string {
	return fmt.Sprintf(
		"Suggest %d restaurants or food spots in %s for someone with mood '%s'. "+
			"Output only a JSON array of objects: name (string), cuisine (string), price_range (string).",
		limit, destination, mood)
}
