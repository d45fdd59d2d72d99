// Package demoapi serves a small stateless JSON API.
package demoapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/httputil"
)

// User is a demo user record.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

var users = []User{
	{ID: 1, Name: "Alice", Email: "alice@example.com"},
	{ID: 2, Name: "Bob", Email: "bob@example.com"},
	{ID: 3, Name: "Charlie", Email: "charlie@example.com"},
}

// Server holds the API's dependencies.
type Server struct {
	logger *zap.Logger
	now    func() time.Time
}

// New returns a Server.
func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{logger: logger, now: time.Now}
}

// Handler returns the routed API with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.home)
	mux.HandleFunc("GET /api/hello", s.hello)
	mux.HandleFunc("GET /api/weather", s.weather)
	mux.HandleFunc("GET /api/users", s.listUsers)
	mux.HandleFunc("POST /api/users", s.createUser)

	// Known paths answer other methods with 405 instead of the catch-all 404.
	mux.HandleFunc("/{$}", s.methodNotAllowed("GET, HEAD"))
	mux.HandleFunc("/api/hello", s.methodNotAllowed("GET, HEAD"))
	mux.HandleFunc("/api/weather", s.methodNotAllowed("GET, HEAD"))
	mux.HandleFunc("/api/users", s.methodNotAllowed("GET, HEAD, POST"))

	mux.HandleFunc("/", s.notFound)
	return httputil.LogRequests(s.logger, s.recoverJSON(mux))
}

func (s *Server) timestamp() string {
	return s.now().Format(time.RFC3339)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "Welcome to the demo API!",
		"timestamp": s.timestamp(),
		"status":    "success",
	})
}

func (s *Server) hello(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "World"
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   fmt.Sprintf("Hello %s!", name),
		"timestamp": s.timestamp(),
	})
}

// weather returns a fixed, simulated forecast.
func (s *Server) weather(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"city":        "Paris",
		"temperature": 22,
		"condition":   "Sunny",
		"timestamp":   s.timestamp(),
	})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// createUser echoes the submitted user back with a fixed id. Nothing is stored.
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := httputil.DecodeJSON(r, &payload); err != nil || payload == nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	rawName, ok := payload["name"]
	if !ok {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	name := fmt.Sprint(rawName)
	// The default applies only when the key is absent; an empty email is kept.
	email := strings.ToLower(name) + "@example.com"
	if raw, ok := payload["email"]; ok {
		email, _ = raw.(string)
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "User created",
		"user":    User{ID: 4, Name: name, Email: email},
	})
}

func (s *Server) methodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "route not found"})
}

func (s *Server) recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic serving request", zap.String("path", r.URL.Path), zap.Any("panic", rec))
				httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
