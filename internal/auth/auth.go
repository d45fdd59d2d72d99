// Package auth tracks the admin session and one-time status messages.
package auth

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
)

// State is the admin authentication state of a request.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// FlashKind groups flash messages for display.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-time status message.
type Flash struct {
	Kind    FlashKind
	Message string
}

const (
	sessionName = "storefront_session"
	adminKey    = "admin"
)

type stateKey struct{}

// Sessions stores the admin flag and flashes in a signed cookie.
type Sessions struct {
	store sessions.Store
}

// NewSessions returns cookie-backed sessions signed with secret.
func NewSessions(secret []byte) *Sessions {
	store := sessions.NewCookieStore(secret)
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return &Sessions{store: store}
}

// CheckPassword compares the submitted password with the stored one.
func CheckPassword(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// session returns the request's session. A cookie that fails to decode
// yields a fresh session rather than an error.
func (s *Sessions) session(r *http.Request) *sessions.Session {
	sess, _ := s.store.Get(r, sessionName)
	return sess
}

// Middleware resolves the admin state once and stores it in the context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := Anonymous
		if ok, _ := s.session(r).Values[adminKey].(bool); ok {
			state = Authenticated
		}
		next.ServeHTTP(w, r.WithContext(WithState(r.Context(), state)))
	})
}

// WithState returns a copy of ctx carrying state.
func WithState(ctx context.Context, state State) context.Context {
	return context.WithValue(ctx, stateKey{}, state)
}

// FromContext returns the state set by Middleware, Anonymous if none.
func FromContext(ctx context.Context) State {
	state, _ := ctx.Value(stateKey{}).(State)
	return state
}

// RequireAdmin redirects anonymous requests to the login page.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) != Authenticated {
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		next(w, r)
	}
}

// Login marks the session authenticated and queues msg.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, msg string) error {
	sess := s.session(r)
	sess.Values[adminKey] = true
	sess.AddFlash(msg, string(FlashSuccess))
	return errors.Wrap(sess.Save(r, w), "save session")
}

// Logout clears the admin flag and queues msg.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request, msg string) error {
	sess := s.session(r)
	delete(sess.Values, adminKey)
	sess.AddFlash(msg, string(FlashSuccess))
	return errors.Wrap(sess.Save(r, w), "save session")
}

// AddFlash queues a message for the next rendered page.
func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, kind FlashKind, msg string) error {
	sess := s.session(r)
	sess.AddFlash(msg, string(kind))
	return errors.Wrap(sess.Save(r, w), "save session")
}

// Flashes pops every queued message. Each message is returned once.
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	sess := s.session(r)
	var out []Flash
	for _, kind := range []FlashKind{FlashSuccess, FlashError} {
		for _, v := range sess.Flashes(string(kind)) {
			if msg, ok := v.(string); ok {
				out = append(out, Flash{Kind: kind, Message: msg})
			}
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, errors.Wrap(sess.Save(r, w), "save session")
}
