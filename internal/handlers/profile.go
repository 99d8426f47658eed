package handlers

import (
	"net/http"

	"github.com/heartview/spark-backend/internal/config"
	"github.com/heartview/spark-backend/internal/services"
)

var avatarService *services.AvatarService

// InitAvatarService wires Cloudinary uploads from configuration.
func InitAvatarService(cfg *config.Config) error {
	service, err := services.NewAvatarService(
		cfg.CloudinaryName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}
	avatarService = service
	return nil
}

type UploadAvatarResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// UploadAvatar stores a profile image (multipart field "file", max 5MB) and
// records its URL on the user.
func UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	if avatarService == nil {
		writeJSON(w, http.StatusInternalServerError, UploadAvatarResponse{Success: false, Message: "Avatar uploads are not available"})
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, UploadAvatarResponse{Success: false, Message: "Invalid multipart form"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, UploadAvatarResponse{Success: false, Message: "No file provided"})
		return
	}
	file.Close()

	url, err := avatarService.UploadAvatar(r.Context(), userID, fileHeader)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, UploadAvatarResponse{Success: false, Message: "Failed to upload avatar"})
		return
	}

	writeJSON(w, http.StatusOK, UploadAvatarResponse{
		Success: true,
		Message: "Avatar updated",
		URL:     url,
	})
}
