package errors

import (
	"fmt"
	"strings"
)

// Bearer error codes from RFC 6750 Section 3.1.
const (
	// ErrorCodeInvalidToken indicates the access token is missing, invalid or expired.
	ErrorCodeInvalidToken = "invalid_token"

	// ErrorCodeInvalidRequest indicates the request is malformed.
	ErrorCodeInvalidRequest = "invalid_request"
)

// Challenge describes a WWW-Authenticate header for a Bearer-protected
// resource. The description is optional and never carries verification
// detail.
type Challenge struct {
	Realm            string
	ErrorCode        string
	ErrorDescription string
}

// NewChallenge creates an invalid_token challenge for realm.
func NewChallenge(realm string) *Challenge {
	return &Challenge{
		Realm:     realm,
		ErrorCode: ErrorCodeInvalidToken,
	}
}

// Error implements the error interface.
func (c *Challenge) Error() string {
	if c.ErrorDescription != "" {
		return fmt.Sprintf("%s: %s", c.ErrorCode, c.ErrorDescription)
	}
	return c.ErrorCode
}

// Header formats the challenge as a WWW-Authenticate header value.
//
//	Bearer realm="authgate", error="invalid_token"
func (c *Challenge) Header() string {
	var parts []string
	if c.Realm != "" {
		parts = append(parts, fmt.Sprintf(`realm="%s"`, escapeQuotes(c.Realm)))
	}
	if c.ErrorCode != "" {
		parts = append(parts, fmt.Sprintf(`error="%s"`, escapeQuotes(c.ErrorCode)))
	}
	if c.ErrorDescription != "" {
		parts = append(parts, fmt.Sprintf(`error_description="%s"`, escapeQuotes(c.ErrorDescription)))
	}
	if len(parts) == 0 {
		return "Bearer"
	}
	return "Bearer " + strings.Join(parts, ", ")
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
