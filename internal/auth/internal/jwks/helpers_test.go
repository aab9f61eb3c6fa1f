package jwks

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"sync"
	"testing"

	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/authgate/internal/auth/authcore"
)

func generateECKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func generateRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

// jwkJSON renders a single public JWK.
func jwkJSON(t *testing.T, key any, kid, alg, use string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(jose.JSONWebKey{Key: key, KeyID: kid, Algorithm: alg, Use: use})
	require.NoError(t, err)
	return raw
}

func jwksDocument(t *testing.T, keys ...json.RawMessage) []byte {
	t.Helper()
	doc, err := json.Marshal(map[string][]json.RawMessage{"keys": keys})
	require.NoError(t, err)
	return doc
}

// stubFetcher counts calls and can hold every call on gate.
type stubFetcher struct {
	mu    sync.Mutex
	calls int
	keys  []authcore.PublicKey
	err   error
	gate  chan struct{}
}

func (s *stubFetcher) Fetch(ctx context.Context) ([]authcore.PublicKey, error) {
	s.mu.Lock()
	s.calls++
	keys, err, gate := s.keys, s.err, s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return keys, err
}

func (s *stubFetcher) set(keys []authcore.PublicKey, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys, s.err = keys, err
}

func (s *stubFetcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
