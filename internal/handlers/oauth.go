package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/heartview/spark-backend/internal/config"
	"github.com/heartview/spark-backend/internal/services"
)

var kakaoBridge *services.KakaoBridge

// InitKakaoBridge wires the Kakao identity bridge from configuration.
func InitKakaoBridge(cfg *config.Config) {
	kakaoBridge = services.NewKakaoBridge(
		cfg.KakaoClientID,
		cfg.KakaoClientSecret,
		cfg.KakaoRedirectURI,
		cfg.KakaoTokenURL,
		cfg.KakaoProfileURL,
	)
}

type KakaoCallbackRequest struct {
	Code string `json:"code"`
}

// KakaoCallback exchanges an authorization code for a local user and a session
// token. Either provider round trip failing fails the whole login attempt; no
// retry.
func KakaoCallback(w http.ResponseWriter, r *http.Request) {
	if kakaoBridge == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Kakao login is not configured",
		})
		return
	}

	var req KakaoCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Authorization code is required",
		})
		return
	}

	user, err := kakaoBridge.Login(r.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProviderToken):
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"message": "Kakao authentication failed",
			})
		case errors.Is(err, services.ErrProviderUnavailable):
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{
				"success": false,
				"message": "Identity provider unavailable",
			})
		default:
			log.Printf("[KakaoCallback] login failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"message": "Server error",
			})
		}
		return
	}

	token, err := Sessions.Create(r.Context(), user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to create session",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user": map[string]interface{}{
			"id":           user.ID.String(),
			"username":     user.Username,
			"display_name": user.DisplayName,
			"avatar_url":   user.AvatarURL,
		},
	})
}
