// ABOUTME: Opaque bearer tokens for the local stub backend
// ABOUTME: Tokens map to usernames in a TTL cache and expire on their own

package devserver

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/Ahmed9588406/customer-support-bot/internal/cache"
)

// TokenService issues and validates bearer tokens
type TokenService struct {
	cache *cache.Cache[string]
}

func NewTokenService(ttl time.Duration) *TokenService {
	return &TokenService{cache: cache.New[string](ttl)}
}

// Issue creates a token for username
func (s *TokenService) Issue(username string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(b)
	s.cache.Set(token, username)
	return token, nil
}

// Lookup returns the username a live token belongs to
func (s *TokenService) Lookup(token string) (string, bool) {
	return s.cache.Get(token)
}

// Revoke invalidates a token immediately
func (s *TokenService) Revoke(token string) {
	s.cache.Delete(token)
}

func (s *TokenService) Close() {
	s.cache.Close()
}
