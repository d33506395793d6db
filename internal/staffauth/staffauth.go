// Package staffauth issues and verifies staff session tokens.
//
// Staff sessions gate roster management actions on the web page. The feature
// is opt-in: without a configured signing key the page runs open and every
// visitor may unregister students, matching the original open behavior.
package staffauth

import (
	"crypto/ed25519"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mergington/activities/internal/platform/config"
	apperrors "github.com/mergington/activities/internal/platform/errors"
)

const (
	defaultIssuer   = "mergington-activities"
	defaultAudience = "mergington-web"
	defaultTTL      = 8 * time.Hour
)

// staffEnv holds raw env values before post-parse validation.
type staffEnv struct {
	SigningKey string `env:"MERGINGTON_STAFF_SIGNING_KEY"`
	Password   string `env:"MERGINGTON_STAFF_PASSWORD"`
	Issuer     string `env:"MERGINGTON_STAFF_ISSUER"`
	Audience   string `env:"MERGINGTON_STAFF_AUDIENCE"`
}

// Config defines how staff sessions are issued and verified.
type Config struct {
	Issuer   string
	Audience string
	Key      ed25519.PrivateKey
	Password string
	TTL      time.Duration
	Now      func() time.Time
}

// Enabled reports whether staff sessions are configured.
func (c Config) Enabled() bool {
	return len(c.Key) == ed25519.PrivateKeySize && c.Password != ""
}

// SessionExpiry returns when a session issued now would expire.
func (c Config) SessionExpiry() time.Time {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return now().UTC().Add(ttl)
}

// Claims captures a validated staff session.
type Claims struct {
	Issuer    string
	Audience  []string
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// sessionClaims is the internal claims type used for JWT parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// LoadConfigFromEnv reads staff session configuration.
// A missing signing key or password disables the feature without error.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw staffEnv
	if err := config.ParseEnv(&raw); err != nil {
		return Config{}, fmt.Errorf("parse staff auth env: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	cfg := Config{
		Issuer:   strings.TrimSpace(raw.Issuer),
		Audience: strings.TrimSpace(raw.Audience),
		Password: strings.TrimSpace(raw.Password),
		TTL:      defaultTTL,
		Now:      now,
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}
	if cfg.Audience == "" {
		cfg.Audience = defaultAudience
	}

	signingKey := strings.TrimSpace(raw.SigningKey)
	if signingKey == "" {
		return cfg, nil
	}
	keyBytes, err := decodeBase64(signingKey)
	if err != nil {
		return Config{}, fmt.Errorf("decode staff signing key: %w", err)
	}
	switch len(keyBytes) {
	case ed25519.SeedSize:
		cfg.Key = ed25519.NewKeyFromSeed(keyBytes)
	case ed25519.PrivateKeySize:
		cfg.Key = ed25519.PrivateKey(keyBytes)
	default:
		return Config{}, fmt.Errorf("staff signing key must be %d or %d bytes", ed25519.SeedSize, ed25519.PrivateKeySize)
	}
	return cfg, nil
}

// CheckPassword verifies the shared staff password in constant time.
func (c Config) CheckPassword(candidate string) bool {
	if !c.Enabled() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(candidate)), []byte(c.Password)) == 1
}

// IssueSession signs a staff session token for subject.
func IssueSession(cfg Config, subject string) (string, error) {
	if !cfg.Enabled() {
		return "", errors.New("staff sessions are not configured")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "staff"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	now := cfg.Now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(cfg.Key)
	if err != nil {
		return "", fmt.Errorf("sign staff session: %w", err)
	}
	return signed, nil
}

// ValidateSession verifies a staff session token and its claims.
func ValidateSession(token string, cfg Config) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, apperrors.New(apperrors.CodeStaffSessionRequired, "staff session is required")
	}
	if !cfg.Enabled() {
		return Claims{}, errors.New("staff sessions are not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Key.Public(), nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeStaffSessionInvalid,
			"staff session issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeStaffSessionInvalid,
			"staff session audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, apperrors.New(apperrors.CodeStaffSessionInvalid, "staff session exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Claims{}, apperrors.New(apperrors.CodeStaffSessionExpired, "staff session is expired")
	}

	claims := Claims{
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		Subject:   parsed.Subject,
		ExpiresAt: exp,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeStaffSessionInvalid, "staff session signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeStaffSessionInvalid, "staff session alg is invalid")
	}
	return apperrors.New(apperrors.CodeStaffSessionInvalid, "staff session is invalid")
}

func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
