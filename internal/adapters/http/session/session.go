// Package session issues and verifies the signed login cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sethvargo/go-password/password"
)

// CookieName is the name of the session cookie.
const CookieName = "arthursden_session"

const (
	defaultTTL      = 12 * time.Hour
	generatedLength = 64
	generatedDigits = 16
	issuer          = "arthursden"
)

// Session errors.
var (
	ErrNoSecret       = errors.New("session secret is empty")
	ErrNoSession      = errors.New("no session")
	ErrInvalidSession = errors.New("invalid session")
)

// Session is the identity carried by a valid cookie.
type Session struct {
	Username  string
	Role      string
	ExpiresAt time.Time
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs sessions as HS256 tokens stored in an HttpOnly cookie.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithTTL sets how long an issued session stays valid.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithSecure marks the cookie Secure.
func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager constructs a Manager signing with secret.
func NewManager(secret string, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	m := &Manager{
		secret: []byte(secret),
		ttl:    defaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// GenerateSecret returns a random signing secret. Sessions signed with it
// do not survive a restart.
func GenerateSecret() (string, error) {
	s, err := password.Generate(generatedLength, generatedDigits, 0, false, true)
	if err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return s, nil
}

// Issue signs a session for username and sets the cookie on w.
func (m *Manager) Issue(w http.ResponseWriter, username, role string) error {
	now := m.now()
	exp := now.Add(m.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read verifies the session cookie on r.
func (m *Manager) Read(r *http.Request) (Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return Session{}, ErrNoSession
	}

	var cl claims
	_, err = jwt.ParseWithClaims(c.Value, &cl, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if cl.Subject == "" {
		return Session{}, ErrInvalidSession
	}
	return Session{
		Username:  cl.Subject,
		Role:      cl.Role,
		ExpiresAt: cl.ExpiresAt.Time,
	}, nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
