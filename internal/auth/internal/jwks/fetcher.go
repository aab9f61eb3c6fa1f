// Package jwks fetches the identity provider's JSON Web Key Set and keeps
// it cached for a bounded time.
package jwks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jamesprial/authgate/internal/auth/authcore"
	"github.com/jamesprial/authgate/internal/auth/autherr"
)

const maxDocumentBytes = 1 << 20

var tracer = otel.Tracer("github.com/jamesprial/authgate/internal/auth/jwks")

// Fetcher downloads and decodes a key set document.
type Fetcher struct {
	httpClient *http.Client
	url        string
}

// NewFetcher creates a Fetcher for url. A nil client gets a 10s timeout;
// callers bound individual fetches with their context.
func NewFetcher(url string, httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Fetcher{httpClient: httpClient, url: url}
}

// URL returns the key set location.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch retrieves the document and returns its usable public keys. Keys
// without a kid, private keys and keys go-jose cannot parse are skipped.
func (f *Fetcher) Fetch(ctx context.Context) ([]authcore.PublicKey, error) {
	ctx, span := tracer.Start(ctx, "jwks.Fetch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("jwks.url", f.url))

	keys, err := f.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "jwks fetch failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("jwks.keys", len(keys)))
	return keys, nil
}

func (f *Fetcher) fetch(ctx context.Context) ([]authcore.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, autherr.NewUpstreamUnavailableError("Fetch", f.url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, autherr.NewUpstreamUnavailableError("Fetch", f.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, autherr.NewUpstreamUnavailableError("Fetch", f.url,
			fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, autherr.NewUpstreamUnavailableError("Fetch", f.url, err)
	}

	var doc rawKeySet
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, autherr.NewUpstreamUnavailableError("Fetch", f.url,
			fmt.Errorf("decode jwks: %w", err))
	}

	return doc.publicKeys(), nil
}

// rawKeySet defers per-key decoding so one unsupported key does not
// discard the whole document.
type rawKeySet struct {
	Keys []json.RawMessage `json:"keys"`
}

func (s rawKeySet) publicKeys() []authcore.PublicKey {
	keys := make([]authcore.PublicKey, 0, len(s.Keys))
	for _, raw := range s.Keys {
		var jwk jose.JSONWebKey
		if err := jwk.UnmarshalJSON(raw); err != nil {
			continue
		}
		if jwk.KeyID == "" || !jwk.Valid() || !jwk.IsPublic() {
			continue
		}
		if jwk.Use != "" && jwk.Use != "sig" {
			continue
		}
		keys = append(keys, authcore.PublicKey{
			KeyID:     jwk.KeyID,
			Algorithm: jwk.Algorithm,
			Key:       jwk.Key,
		})
	}
	return keys
}
