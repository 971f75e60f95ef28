// Package agents implements the planning sub-tasks on top of a text
// generator and an image searcher.
//
// Each sub-task builds a prompt, asks the generator for a JSON array,
// decodes it into an explicit schema and validates every item. Items are
// then enriched with images; an image lookup failure leaves the image empty
// and never fails the sub-task.
package agents
