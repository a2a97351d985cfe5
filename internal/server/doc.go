// Package server exposes the taskline REST API.
//
// Public routes handle registration and login; everything under
// /api/{ownerId}/ requires a bearer token whose subject equals the path
// owner. The tool execution surface (POST /execute, GET /tools) is
// mounted alongside so a single binary can serve both the chat API and
// the tool-dispatch boundary.
package server
