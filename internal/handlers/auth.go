package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartview/spark-backend/internal/database"
	"github.com/heartview/spark-backend/internal/services"
	"github.com/heartview/spark-backend/pkg/utils"
)

type SignupRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and signin.
type AuthResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	User    map[string]interface{} `json:"user,omitempty"`
	Token   string                 `json:"token,omitempty"`
	Region  string                 `json:"region,omitempty"`
}

// Signup handles password account registration.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if err := utils.ValidateUsername(req.Username); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: err.Error()})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "Password must be at least 8 characters"})
		return
	}

	normalized := utils.NormalizeUsername(req.Username)

	var existing string
	err := database.PostgresDB.QueryRow(
		"SELECT username FROM users WHERE LOWER(username) = $1", normalized,
	).Scan(&existing)
	if err == nil {
		writeJSON(w, http.StatusConflict, AuthResponse{Success: false, Message: "Username is already taken"})
		return
	} else if err != sql.ErrNoRows {
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Database error"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Failed to hash password"})
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = normalized
	}

	userID := uuid.New()
	now := time.Now().UTC()
	region := services.InferRegion(normalized)

	_, err = database.PostgresDB.Exec(`
		INSERT INTO users (id, username, display_name, password_hash, region, created_at, is_active)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, TRUE)
	`, userID, normalized, displayName, hashedPassword, region, now)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Failed to create user"})
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created successfully",
		User: map[string]interface{}{
			"id":         userID.String(),
			"username":   normalized,
			"created_at": now,
		},
	})
}

// Signin validates credentials and mints a session token. Missing fields are a
// validation error answered before any credential comparison; a mismatch is an
// authentication error that never reveals which part was wrong.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "Username and password are required"})
		return
	}

	identity, err := Credentials.Validate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, AuthResponse{Success: false, Message: "Invalid username or password"})
		case errors.Is(err, services.ErrAccountInactive):
			writeJSON(w, http.StatusForbidden, AuthResponse{Success: false, Message: "Account is inactive"})
		default:
			writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Server error"})
		}
		return
	}

	token, err := Sessions.Create(r.Context(), identity.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Failed to create session"})
		return
	}

	region := services.InferRegion(identity.Username)
	welcome := fmt.Sprintf("Welcome back, %s!", identity.Username)
	if region != "" {
		welcome = fmt.Sprintf("Welcome back, %s from %s!", identity.Username, region)
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: welcome,
		Token:   token,
		Region:  region,
		User: map[string]interface{}{
			"id":           identity.UserID.String(),
			"username":     identity.Username,
			"display_name": identity.DisplayName,
			"avatar_url":   identity.AvatarURL,
		},
	})
}

// Signout invalidates the presented session token. Signing out with no valid
// token still succeeds.
func Signout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token != "" {
		_ = Sessions.Invalidate(r.Context(), token)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Signed out",
	})
}

// GetMe resolves the bearer token to the authenticated user's profile.
func GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var username, displayName string
	var avatarURL, region sql.NullString
	var createdAt time.Time

	err := database.PostgresDB.QueryRowContext(r.Context(), `
		SELECT username, display_name, avatar_url, region, created_at
		FROM users WHERE id = $1 AND is_active = TRUE
	`, userID).Scan(&username, &displayName, &avatarURL, &region, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "User not found"})
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "Database error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":           userID.String(),
			"username":     username,
			"display_name": displayName,
			"avatar_url":   avatarURL.String,
			"region":       region.String,
			"created_at":   createdAt,
		},
	})
}
