// Package chat orchestrates one chatbot turn end to end.
//
// A turn moves through received, interpreted, optionally tool_dispatched,
// and responded. The service ensures the conversation exists and belongs
// to the caller, persists the user message, interprets the text, runs at
// most one tool call through the dispatcher, renders list results into
// the reply, and appends the assistant message with tool metadata
// attached. The assistant append happens even after upstream errors so
// the history stays a complete audit trail. Turns within one conversation
// are serialized; different conversations proceed independently.
package chat
