package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/heartview/spark-backend/internal/database"
)

const avatarFolder = "heartview/avatars"

// AvatarService uploads profile images to Cloudinary and records the resulting
// URL on the user row.
type AvatarService struct {
	cld *cloudinary.Cloudinary
}

func NewAvatarService(cloudName, apiKey, apiSecret string) (*AvatarService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &AvatarService{cld: cld}, nil
}

// UploadAvatar stores the image and updates the user's avatar_url.
func (s *AvatarService) UploadAvatar(ctx context.Context, userID uuid.UUID, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       avatarFolder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	_, err = database.PostgresDB.ExecContext(ctx, `
		UPDATE users SET avatar_url = $1 WHERE id = $2
	`, uploadResult.SecureURL, userID)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
