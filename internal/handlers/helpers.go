package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/heartview/spark-backend/internal/services"
)

// Backends the handlers talk through. main wires the production
// implementations; tests substitute fakes.
var (
	Credentials services.CredentialValidator = services.PostgresCredentials{}
	Sessions    services.SessionStore        = services.RedisSessions{}
	Pending     services.PendingStore        = services.RedisPendingStore{}
	Challenges  services.ChallengeStore      = services.PostgresChallenges{}
	Messages    services.MessageLog          = services.MongoMessages{}
)

func extractBearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// requireAuth validates the session token and returns the authenticated user's
// id. On failure it writes a 401 response and returns ok=false.
func requireAuth(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"message": "Authentication required",
		})
		return uuid.Nil, false
	}

	userID, ok, err := Sessions.Validate(r.Context(), token)
	if err != nil || !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"message": "Invalid or expired session",
		})
		return uuid.Nil, false
	}

	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
