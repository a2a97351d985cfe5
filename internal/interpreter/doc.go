// Package interpreter maps free-text chat commands to task tool calls.
//
// The rule-based path classifies an utterance as one of five intents
// (add, list, complete, delete, update) using a fixed priority order and
// keyword sets, extracts the arguments (title, status filter, canonical
// task ID, field updates), and produces at most one tool call plus a
// draft reply. Target-entity operations require a canonical 36-character
// hyphenated hex identifier; bare integers or truncated prefixes never
// match, and the reply then points the user at listing their tasks.
//
// When OpenRouter is configured, a remote chat model is asked first with
// the five tool schemas and tool_choice auto; its tool calls are accepted
// verbatim when the names are registered. Any remote failure falls back
// silently to the rule path.
package interpreter
