// Package orchestrator implements the core planning logic.
//
// The orchestrator manager builds a plan by:
//   - Validating the request
//   - Serving a fresh cached plan when one exists
//   - Computing the budget breakdown locally
//   - Fetching trends, then fanning out the remaining sections in parallel
//   - Publishing progress events and storing the merged plan
//
// A section that fails or times out is left empty; only an invalid request
// fails the call.
package orchestrator
