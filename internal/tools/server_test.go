// ABOUTME: Tests for the tool server HTTP surface
// ABOUTME: Uses httptest with a registry backed by real SQLite

package tools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToolTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	registry, _, owner := newTestRegistry(t)

	mux := http.NewServeMux()
	NewServer(registry).Routes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, owner
}

func postExecute(t *testing.T, ts *httptest.Server, body string) (*http.Response, Envelope) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/execute", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var env Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestExecute_Success(t *testing.T) {
	ts, owner := newToolTestServer(t)

	resp, outer := postExecute(t, ts, `{"name": "add_task", "arguments": {"user_id": "`+owner+`", "title": "via http"}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, outer.Success)

	// The handler envelope rides inside the transport envelope.
	var inner Envelope
	require.NoError(t, json.Unmarshal(outer.Result, &inner))
	require.True(t, inner.Success, "inner error: %s", inner.Error)

	var task TaskView
	require.NoError(t, json.Unmarshal(inner.Result, &task))
	assert.Equal(t, "via http", task.Title)
}

func TestExecute_HandlerErrorInEnvelope(t *testing.T) {
	ts, owner := newToolTestServer(t)

	// Validation failures are HTTP 200 with the error in the inner envelope.
	resp, outer := postExecute(t, ts, `{"name": "add_task", "arguments": {"user_id": "`+owner+`", "title": "  "}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, outer.Success)

	var inner Envelope
	require.NoError(t, json.Unmarshal(outer.Result, &inner))
	assert.False(t, inner.Success)
	assert.Equal(t, "task title cannot be empty", inner.Error)
}

func TestExecute_UnknownTool(t *testing.T) {
	ts, owner := newToolTestServer(t)

	resp, env := postExecute(t, ts, `{"name": "nuke_tasks", "arguments": {"user_id": "`+owner+`"}}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "unknown tool")
}

func TestExecute_MissingUserID(t *testing.T) {
	ts, _ := newToolTestServer(t)

	resp, env := postExecute(t, ts, `{"name": "list_tasks", "arguments": {}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestExecute_MalformedBody(t *testing.T) {
	ts, _ := newToolTestServer(t)

	resp, env := postExecute(t, ts, `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestListTools(t *testing.T) {
	ts, _ := newToolTestServer(t)

	resp, err := http.Get(ts.URL + "/tools")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Tools []string `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.ElementsMatch(t, []string{"add_task", "list_tasks", "complete_task", "update_task", "delete_task"}, body.Tools)
}
