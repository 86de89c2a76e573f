// Package mock serves a self-contained SteamServerUI backend with canned
// data: the REST endpoints the dashboard calls plus the console, detection
// and log event streams. It backs the preview binary and the HTTP tests.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/steamserverui/ssui-console/internal/logging/events"
)

// Options configures a Server.
type Options struct {
	// Username and Password are the admin credentials accepted by login.
	Username string
	Password string
	// RequireAuth rejects API calls without a valid token.
	RequireAuth bool
	// SSCM enables the console command bridge.
	SSCM bool
	// Now stamps the canned backups; defaults to time.Now.
	Now func() time.Time
}

// Stream paths served by the mock.
const (
	StreamConsole = "/console"
	StreamEvents  = "/events"
)

// LogStream returns the path of the log stream for level.
func LogStream(level string) string {
	return "/logs/" + level
}

// Server is the in-memory backend.
type Server struct {
	router *mux.Router
	hub    *hub

	mu          sync.Mutex
	requireAuth bool
	sscm        bool
	running     bool
	users       map[string]string
	tokens      map[string]string
	players     map[string]Player
	backups     []Backup
	settings    []Setting
	restored    []int
	commands    []string
}

// NewServer builds a server and its routes.
func NewServer(opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		hub:         newHub(),
		requireAuth: opts.RequireAuth,
		sscm:        opts.SSCM,
		users:       map[string]string{},
		tokens:      map[string]string{},
		players:     defaultPlayers(),
		backups:     defaultBackups(now()),
		settings:    defaultSettings(),
	}
	if opts.Username != "" {
		s.users[opts.Username] = opts.Password
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	open := mux.NewRouter()
	open.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	open.HandleFunc("/api/v2/auth/setup/register", s.handleRegister).Methods("POST")
	open.HandleFunc("/api/v2/auth/setup/finalize", s.handleFinalize).Methods("POST")

	protected := mux.NewRouter()
	protected.HandleFunc("/api/v2/auth/check", s.handleAuthCheck).Methods("GET")
	protected.HandleFunc("/api/v2/auth/whoami", s.handleWhoAmI).Methods("GET")
	protected.HandleFunc("/api/v2/server/status", s.handleStatus).Methods("GET")
	protected.HandleFunc("/api/v2/server/status/connectedplayers", s.handlePlayers).Methods("GET")
	protected.HandleFunc("/api/v2/backups", s.handleBackups).Methods("GET")
	protected.HandleFunc("/api/v2/backups/restore", s.handleRestore).Methods("GET")
	protected.HandleFunc("/start", s.handleStart).Methods("GET")
	protected.HandleFunc("/stop", s.handleStop).Methods("GET")
	protected.HandleFunc("/api/v2/steamcmd/run", s.handleSteamCMD).Methods("GET")
	protected.HandleFunc("/api/v2/SSCM/enabled", s.handleSSCMEnabled).Methods("GET")
	protected.HandleFunc("/api/v2/SSCM/run", s.handleSSCMRun).Methods("POST")
	protected.HandleFunc("/api/v2/settings", s.handleSettings).Methods("GET")
	protected.HandleFunc("/api/v2/settings/save", s.handleSave).Methods("POST")
	protected.HandleFunc("/api/v2/saveconfig", s.handleSave).Methods("POST")
	protected.HandleFunc(StreamConsole, s.handleStream).Methods("GET")
	protected.HandleFunc(StreamEvents, s.handleStream).Methods("GET")
	protected.HandleFunc("/logs/{level:info|warn|error|debug}", s.handleStream).Methods("GET")
	protected.Use(s.authMiddleware)

	s.router = mux.NewRouter()
	s.router.PathPrefix("/auth/login").Handler(open)
	s.router.PathPrefix("/api/v2/auth/setup").Handler(open)
	s.router.PathPrefix("/").Handler(protected)
	s.router.Use(s.loggingMiddleware)
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Publish sends line to every client of stream and returns how many
// received it.
func (s *Server) Publish(stream, line string) int {
	return s.hub.publish(stream, line)
}

// Subscribers counts the open clients of stream.
func (s *Server) Subscribers(stream string) int {
	return s.hub.count(stream)
}

// Running reports whether the simulated game server is up.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Restored lists the backup indexes restored so far.
func (s *Server) Restored() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.restored...)
}

// Commands lists the console commands received so far.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// Setting returns the current value of the named setting.
func (s *Server) Setting(name string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.settings {
		if st.Name == name {
			return st.Value, true
		}
	}
	return nil, false
}

// Run replays the canned console, detection and log lines every interval
// until ctx is cancelled.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	levels := []string{"info", "warn", "error"}
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		s.Publish(StreamConsole, ConsoleMessages[i%len(ConsoleMessages)])
		s.Publish(StreamEvents, DetectionEvents[i%len(DetectionEvents)])
		level := levels[i%len(levels)]
		lines := LogMessages[level]
		s.Publish(LogStream(level), lines[(i/len(levels))%len(lines)])
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		events.Mock.Request(r.Method, r.URL.Path, rec.status)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.userFor(r); !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userFor resolves the caller from a bearer token or the session cookie. With
// auth disabled everyone is the admin.
func (s *Server) userFor(r *http.Request) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if c, err := r.Cookie("AuthToken"); token == "" && err == nil {
		token = c.Value
	}
	if user, ok := s.tokens[token]; ok {
		return user, true
	}
	if !s.requireAuth {
		return "admin", true
	}
	return "", false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprint(w, text)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}
	s.mu.Lock()
	password, ok := s.users[in.Username]
	if !ok || password != in.Password {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}
	token := uuid.NewString()
	s.tokens[token] = in.Username
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: "AuthToken", Value: token, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK", "token": token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Username == "" || in.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username and password are required"})
		return
	}
	s.mu.Lock()
	s.users[in.Username] = in.Password
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if len(s.users) == 0 {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Register an admin account first"})
		return
	}
	s.requireAuth = true
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{
		"message":      "Setup finalized. Authentication is now enabled.",
		"restart_hint": "Restart the server to apply all settings.",
	})
}

func (s *Server) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "authenticated"})
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	user, _ := s.userFor(r)
	writeJSON(w, http.StatusOK, map[string]string{"username": user, "accessLevel": "admin"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"isRunning": running, "uuid": "preview"})
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.players))
	for id := range s.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]map[string]Player, 0, len(ids))
	for _, id := range ids {
		out = append(out, map[string]Player{id: s.players[id]})
	}
	running := s.running
	s.mu.Unlock()
	if !running || len(out) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"status": "no players"})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBackups(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	backups := append([]Backup(nil), s.backups...)
	s.mu.Unlock()
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit < len(backups) {
		backups = backups[:limit]
	}
	writeJSON(w, http.StatusOK, backups)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid index"})
		return
	}
	s.mu.Lock()
	found := false
	for _, b := range s.backups {
		if b.Index == index {
			found = true
			break
		}
	}
	if found {
		s.restored = append(s.restored, index)
	}
	s.mu.Unlock()
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Backup %d not found", index)})
		return
	}
	writeText(w, fmt.Sprintf("Backup %d restored successfully", index))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	already := s.running
	s.running = true
	s.mu.Unlock()
	if already {
		writeText(w, "Server is already running.")
		return
	}
	s.Publish(StreamEvents, DetectionEvents[0])
	s.Publish(StreamEvents, DetectionEvents[1])
	writeText(w, "Server started.")
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	was := s.running
	s.running = false
	s.mu.Unlock()
	if !was {
		writeText(w, "Server is not running.")
		return
	}
	s.Publish(StreamEvents, "🎮 [Gameserver] 🚨 Server is stopping...")
	writeText(w, "Server stopped.")
}

func (s *Server) handleSteamCMD(w http.ResponseWriter, r *http.Request) {
	s.Publish(StreamConsole, "SteamCMD: update check started")
	writeJSON(w, http.StatusOK, map[string]string{"message": "SteamCMD run started"})
}

func (s *Server) handleSSCMEnabled(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	enabled := s.sscm
	s.mu.Unlock()
	if !enabled {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "SSCM is disabled"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "enabled"})
}

func (s *Server) handleSSCMRun(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Command) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Missing command"})
		return
	}
	s.mu.Lock()
	enabled := s.sscm
	if enabled {
		s.commands = append(s.commands, in.Command)
	}
	s.mu.Unlock()
	if !enabled {
		writeJSON(w, http.StatusForbidden, map[string]string{"status": "error", "message": "SSCM is disabled"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Command sent"})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	settings := append([]Setting(nil), s.settings...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": settings})
}

// handleSave applies a single-key {field: value} document.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var in map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || len(in) != 1 {
		writeJSON(w, http.StatusOK, map[string]string{"status": "error", "message": "Expected exactly one field"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for field, value := range in {
		for i := range s.settings {
			if s.settings[i].Name == field {
				s.settings[i].Value = value
				writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Config updated"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "error", "message": "Unknown setting " + field})
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	s.hub.serveStream(w, r, r.URL.Path)
}
