package transportcore

import (
	"encoding/json"
	"net/http"

	"github.com/jamesprial/authgate/pkg/authgate"
)

// WriteJSON writes v as a JSON response with status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set(authgate.HeaderContentType, authgate.ContentTypeJSON)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
