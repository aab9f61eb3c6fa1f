package abuse

import "github.com/jamesprial/authgate/internal/abuse/abuseerr"

// Sentinel errors for abuse guards. Both carry a retry-after hint readable
// with internal/errors.RetryAfter.
var (
	ErrRateLimited = abuseerr.ErrRateLimited
	ErrLockedOut   = abuseerr.ErrLockedOut
)
