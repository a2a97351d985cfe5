// Package dispatch routes named tool operations to their handlers.
//
// The dispatcher enforces the ownership invariant: the authenticated
// owner ID is injected into every argument bag, overwriting anything a
// caller or the interpreter put there. It runs tools in-process against
// a registry or over HTTP against a tool server, converting transport
// failures into ErrConnectivity and flattening nested result envelopes.
package dispatch
