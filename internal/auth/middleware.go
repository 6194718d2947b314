package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned for a missing or invalid bearer token.
var ErrUnauthorized = errors.New("unauthorized")

const profileKey = "auth.profile"

// Profile is the signed-in user as asserted by the identity provider.
type Profile struct {
	Subject string `json:"sub"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Claims are the token claims the gate reads.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Config configures token validation.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	Disabled bool
}

// Gate validates HS256 bearer tokens issued by the identity provider.
type Gate struct {
	cfg    Config
	parser *jwt.Parser
}

// NewGate creates a Gate.
func NewGate(cfg Config) *Gate {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &Gate{cfg: cfg, parser: jwt.NewParser(opts...)}
}

// Authenticate parses and validates a raw token.
func (g *Gate) Authenticate(raw string) (Profile, error) {
	if raw == "" {
		return Profile{}, ErrUnauthorized
	}

	claims := &Claims{}
	token, err := g.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(g.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return Profile{}, errors.Join(ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return Profile{}, errors.Join(ErrUnauthorized, errors.New("token has no subject"))
	}

	return Profile{Subject: claims.Subject, Name: claims.Name, Email: claims.Email}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// caller's Profile for downstream handlers.
func (g *Gate) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if g.cfg.Disabled {
			c.Locals(profileKey, Profile{Subject: "anonymous"})
			return c.Next()
		}

		profile, err := g.Authenticate(extractToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		c.Locals(profileKey, profile)
		return c.Next()
	}
}

// ProfileFrom returns the Profile stored by Middleware.
func ProfileFrom(c *fiber.Ctx) (Profile, bool) {
	p, ok := c.Locals(profileKey).(Profile)
	return p, ok
}

func extractToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
