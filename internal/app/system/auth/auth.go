package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants & globals                                                |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey   = "is_authenticated"
	teamIDKey   = "team_id"
	teamNameKey = "team_name"
	roleKey     = "role"
)

// Roles carried in the session.
const (
	RoleTeam  = "team"
	RoleAdmin = "admin"
)

// Store is initialised once via InitSessionStore.
var Store *sessions.CookieStore

// SessionName is configured at startup (festhub-session by default).
var SessionName = "festhub-session"

/*─────────────────────────────────────────────────────────────────────────────*
| Current-session helper                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// Session is what we cache in the cookie & inject into r.Context().
// For admin sessions TeamID and TeamName are empty.
type Session struct {
	TeamID   string
	TeamName string
	Role     string
}

type ctxKey string

const currentSessionKey ctxKey = "currentSession"

// Current returns the session & "found?" flag.
func Current(r *http.Request) (*Session, bool) {
	s, ok := r.Context().Value(currentSessionKey).(*Session)
	return s, ok
}

// LoadSession injects the session into context if signed in.
// If the session store has not been initialized yet, it is a no-op.
func LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Store == nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := Store.Get(r, SessionName)
		if err != nil {
			// A cookie signed with a rotated key fails to decode; treat the
			// visitor as signed out and let a fresh login replace it.
			if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
				next.ServeHTTP(w, r)
				return
			}
		}

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			s := &Session{
				TeamID:   getString(sess, teamIDKey),
				TeamName: getString(sess, teamNameKey),
				Role:     getString(sess, roleKey),
			}
			r = WithSession(r, s)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTeam ensures a team (or admin) session is present. Admins pass so
// they can act on any team's behalf in the portal API.
func RequireTeam(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := Current(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if s.Role != RoleTeam && s.Role != RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin ensures an admin session is present.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := Current(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if s.Role != RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SignIn writes a new authenticated session cookie.
func SignIn(w http.ResponseWriter, r *http.Request, s Session) error {
	if Store == nil {
		return fmt.Errorf("session store not initialized")
	}
	sess, _ := Store.Get(r, SessionName)
	sess.Values[isAuthKey] = true
	sess.Values[teamIDKey] = s.TeamID
	sess.Values[teamNameKey] = s.TeamName
	sess.Values[roleKey] = s.Role
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func SignOut(w http.ResponseWriter, r *http.Request) error {
	if Store == nil {
		return nil
	}
	sess, _ := Store.Get(r, SessionName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// InitSessionStore initializes the global session Store using the provided
// session key, cookie name, and domain. The secure flag controls whether
// cookies are marked Secure; SameSite is Lax either way since the portal API
// is same-site.
func InitSessionStore(sessionKey, sessionName, domain string, secure bool, logger *zap.Logger) error {
	if sessionKey == "" {
		return fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if sessionName != "" {
		SessionName = sessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	Store = store

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return nil
}

// helpers

// WithSession returns a request whose context carries the session, the same
// way LoadSession injects it. Handler tests use it to fake a signed-in user.
func WithSession(r *http.Request, s *Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentSessionKey, s))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
