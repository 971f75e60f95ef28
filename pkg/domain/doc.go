// Package domain defines the trip planner's data model: the incoming plan
// request, its cache key, the budget breakdown and the composite plan
// assembled from the independent sub-task results.
package domain
