// Package ports declares the interfaces between the orchestration core and
// its adapters: cache stores, the text-generation and image-search services,
// the sub-task set, metrics and the event bus.
package ports
