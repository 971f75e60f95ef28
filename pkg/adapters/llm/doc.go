// Package llm provides text generation clients used by the planning agents.
//
// The factory creates clients based on provider configuration.
// Currently supports:
//   - Anthropic Claude
package llm
