// ABOUTME: End-to-end HTTP tests exercising auth, task CRUD, and chat routes
// ABOUTME: Each test drives the full wired handler against a temp database

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/auth"
	"github.com/taskline/taskline/internal/chat"
	"github.com/taskline/taskline/internal/dispatch"
	"github.com/taskline/taskline/internal/identity"
	"github.com/taskline/taskline/internal/interpreter"
	"github.com/taskline/taskline/internal/store"
	"github.com/taskline/taskline/internal/tools"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "taskline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	registry := tools.NewRegistry()
	for _, tool := range tools.TaskTools(s) {
		require.NoError(t, registry.Register(tool))
	}

	verifier := auth.NewJWTVerifier([]byte("test-secret"))
	ident := identity.NewService(s, verifier, time.Hour)
	chatSvc := chat.NewService(s, interpreter.NewRules(), dispatch.NewLocal(registry))

	srv := httptest.NewServer(New(s, ident, chatSvc, verifier, tools.NewServer(registry)).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

// registerUser creates an account and returns (userID, token).
func registerUser(t *testing.T, srv *httptest.Server, email string) (string, string) {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	user := body["user"].(map[string]any)
	return user["id"].(string), body["token"].(string)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	userID, token := registerUser(t, srv, "alice@example.com")
	assert.NotEmpty(t, userID)
	assert.NotEmpty(t, token)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, userID, body["user"].(map[string]any)["id"])
	assert.NotEmpty(t, body["token"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "bob@example.com")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"email":    "bob@example.com",
		"name":     "Other Bob",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email already registered", body["error"])
}

func TestRegister_Validation(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"bad email", map[string]string{"email": "not-an-email", "name": "X", "password": "password123"}},
		{"short password", map[string]string{"email": "c@example.com", "name": "X", "password": "short"}},
		{"empty name", map[string]string{"email": "c@example.com", "name": "", "password": "password123"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", tc.body)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "carol@example.com")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "carol@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_UnknownEmail(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTasks_RequireAuth(t *testing.T) {
	srv := newTestServer(t)
	userID, _ := registerUser(t, srv, "dave@example.com")

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/"+userID+"/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTasks_ForeignOwnerForbidden(t *testing.T) {
	srv := newTestServer(t)
	aliceID, _ := registerUser(t, srv, "alice@example.com")
	_, bobToken := registerUser(t, srv, "bob@example.com")

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/"+aliceID+"/tasks", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTasks_CRUDFlow(t *testing.T) {
	srv := newTestServer(t)
	userID, token := registerUser(t, srv, "erin@example.com")
	base := srv.URL + "/api/" + userID + "/tasks"

	// create
	resp, created := doJSON(t, http.MethodPost, base, token, map[string]string{
		"title":       "buy milk",
		"description": "two liters",
		"priority":    "high",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	taskID := created["id"].(string)
	assert.Equal(t, "buy milk", created["title"])
	assert.Equal(t, "high", created["priority"])
	assert.Equal(t, false, created["completed"])

	// get
	resp, got := doJSON(t, http.MethodGet, base+"/"+taskID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "two liters", got["description"])

	// list
	resp, list := doJSON(t, http.MethodGet, base, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), list["count"])

	// partial update
	resp, updated := doJSON(t, http.MethodPut, base+"/"+taskID, token, map[string]any{
		"priority": "low",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "low", updated["priority"])
	assert.Equal(t, "buy milk", updated["title"])

	// toggle complete, twice
	resp, toggled := doJSON(t, http.MethodPatch, base+"/"+taskID+"/complete", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, toggled["completed"])

	resp, toggled = doJSON(t, http.MethodPatch, base+"/"+taskID+"/complete", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, toggled["completed"])

	// delete
	resp, _ = doJSON(t, http.MethodDelete, base+"/"+taskID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, base+"/"+taskID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTasks_CreateValidation(t *testing.T) {
	srv := newTestServer(t)
	userID, token := registerUser(t, srv, "frank@example.com")
	base := srv.URL + "/api/" + userID + "/tasks"

	resp, body := doJSON(t, http.MethodPost, base, token, map[string]string{"title": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "task title cannot be empty", body["error"])

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}
	resp, _ = doJSON(t, http.MethodPost, base, token, map[string]string{"title": string(long)})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestTasks_ListStatusFilter(t *testing.T) {
	srv := newTestServer(t)
	userID, token := registerUser(t, srv, "grace@example.com")
	base := srv.URL + "/api/" + userID + "/tasks"

	_, first := doJSON(t, http.MethodPost, base, token, map[string]string{"title": "one"})
	doJSON(t, http.MethodPost, base, token, map[string]string{"title": "two"})
	doJSON(t, http.MethodPatch, base+"/"+first["id"].(string)+"/complete", token, nil)

	resp, list := doJSON(t, http.MethodGet, base+"?status=completed", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), list["count"])

	resp, list = doJSON(t, http.MethodGet, base+"?status=pending", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), list["count"])

	resp, _ = doJSON(t, http.MethodGet, base+"?status=bogus", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestTasks_OwnershipIsolation(t *testing.T) {
	srv := newTestServer(t)
	aliceID, aliceToken := registerUser(t, srv, "alice@example.com")
	bobID, bobToken := registerUser(t, srv, "bob@example.com")

	_, created := doJSON(t, http.MethodPost, srv.URL+"/api/"+aliceID+"/tasks", aliceToken, map[string]string{
		"title": "alice secret",
	})
	taskID := created["id"].(string)

	// Bob's token through Bob's own path can never see Alice's task.
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/"+bobID+"/tasks/"+taskID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/"+bobID+"/tasks/"+taskID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChat_AddTaskThroughChat(t *testing.T) {
	srv := newTestServer(t)
	userID, token := registerUser(t, srv, "henry@example.com")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/"+userID+"/chat", token, map[string]string{
		"message": "add a task to water the plants",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "I'll add a task for you: water the plants", body["response"])
	assert.NotEmpty(t, body["conversation_id"])
	assert.Equal(t, false, body["error_occurred"])

	// the task actually exists afterwards
	_, list := doJSON(t, http.MethodGet, srv.URL+"/api/"+userID+"/tasks", token, nil)
	assert.Equal(t, float64(1), list["count"])
}

func TestChat_EmptyMessage(t *testing.T) {
	srv := newTestServer(t)
	userID, token := registerUser(t, srv, "iris@example.com")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/"+userID+"/chat", token, map[string]string{
		"message": "   ",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestChat_ConversationHistory(t *testing.T) {
	srv := newTestServer(t)
	userID, token := registerUser(t, srv, "judy@example.com")

	_, turn := doJSON(t, http.MethodPost, srv.URL+"/api/"+userID+"/chat", token, map[string]string{
		"message": "show my tasks",
	})
	convID := turn["conversation_id"].(string)

	resp, conv := doJSON(t, http.MethodGet, srv.URL+"/api/"+userID+"/conversations/"+convID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, convID, conv["id"])

	msgs := conv["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].(map[string]any)["sender"])
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["sender"])
}

func TestChat_ForeignConversationForbidden(t *testing.T) {
	srv := newTestServer(t)
	aliceID, aliceToken := registerUser(t, srv, "alice@example.com")
	bobID, bobToken := registerUser(t, srv, "bob@example.com")

	_, turn := doJSON(t, http.MethodPost, srv.URL+"/api/"+aliceID+"/chat", aliceToken, map[string]string{
		"message": "show my tasks",
	})
	convID := turn["conversation_id"].(string)

	// Bob cannot continue Alice's conversation from his own path.
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/"+bobID+"/chat", bobToken, map[string]any{
		"message":         "delete everything",
		"conversation_id": convID,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/"+bobID+"/conversations/"+convID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestChat_UnknownConversation(t *testing.T) {
	srv := newTestServer(t)
	userID, token := registerUser(t, srv, "kate@example.com")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/"+userID+"/chat", token, map[string]any{
		"message":         "show my tasks",
		"conversation_id": "00000000-0000-0000-0000-000000000000",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToolEndpoint_Mounted(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/tools")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
