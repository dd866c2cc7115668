package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const (
	testUser     = "testuser"
	testPassword = "testpassword"
)

// fakeServer is an in-process AttackMate API. It issues one token per login
// and accepts only tokens it has issued (or seeded via accept).
type fakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]string
	accepted map[string]bool
	logins   int
	actions  int

	// loginStatus forces the login endpoint to answer with this status.
	loginStatus int

	// respond overrides the body of accepted action requests.
	respond func(w http.ResponseWriter, r *http.Request)

	lastPath  string
	lastToken string
	lastBody  string
	lastQuery string
	lastType  string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		users: map[string]string{
			testUser: testPassword,
			"alice":  "alice-pw",
			"bob":    "bob-pw",
		},
		accepted: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", fs.handleLogin)
	mux.HandleFunc("/playbooks/execute/yaml", fs.handleAction)
	mux.HandleFunc("/command/execute", fs.handleAction)

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.logins++

	if fs.loginStatus != 0 {
		w.WriteHeader(fs.loginStatus)
		_, _ = w.Write([]byte(`{"detail": "Incorrect username or password"}`))
		return
	}

	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	user, pass := r.PostForm.Get("username"), r.PostForm.Get("password")
	if want, ok := fs.users[user]; !ok || want != pass {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Incorrect username or password"}`))
		return
	}

	token := fmt.Sprintf("%s-token-%d", user, fs.logins)
	fs.accepted[token] = true
	_ = json.NewEncoder(w).Encode(map[string]string{"access_token": token, "token_type": "bearer"})
}

func (fs *fakeServer) handleAction(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	fs.mu.Lock()
	fs.actions++
	fs.lastPath = r.URL.Path
	fs.lastToken = r.Header.Get("X-Auth-Token")
	fs.lastBody = string(body)
	fs.lastQuery = r.URL.RawQuery
	fs.lastType = r.Header.Get("Content-Type")
	ok := fs.accepted[fs.lastToken]
	respond := fs.respond
	fs.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Invalid or expired token"}`))
		return
	}
	if respond != nil {
		respond(w, r)
		return
	}
	_, _ = w.Write([]byte(`{
		"success": true,
		"message": "Playbook executed successfully",
		"final_state": {"variables": {"target_ip": "192.168.1.100"}}
	}`))
}

// accept marks token as valid without a login.
func (fs *fakeServer) accept(token string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.accepted[token] = true
}

// revokeAll makes every issued token invalid, as after a server-side expiry.
func (fs *fakeServer) revokeAll() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.accepted = make(map[string]bool)
}

func (fs *fakeServer) setRespond(f func(w http.ResponseWriter, r *http.Request)) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.respond = f
}

func (fs *fakeServer) counts() (logins, actions int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.logins, fs.actions
}

func (fs *fakeServer) last() (path, token, body, query, contentType string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.lastPath, fs.lastToken, fs.lastBody, fs.lastQuery, fs.lastType
}

// newTestLogger returns a text logger writing into the returned buffer.
func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
