// Package http provides the REST API of the trip planner.
//
// Endpoints:
//   - POST /api/v1/plans          build a plan (JSON or form body)
//   - GET  /api/v1/plans/example  example request
//   - GET  /api/v1/plans/ws       live plan progress (WebSocket, when enabled)
//   - GET  /health                worker pool and credential status
//   - GET  /healthz               liveness
//   - GET  /metrics               Prometheus metrics
package http
