package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Upload presets. Memories keep their aspect ratio capped at 800px; profile
// pictures are face-cropped into a 400px circle.
const (
	MemoryFolder         = "aura-memories"
	ProfileFolder        = "aura-profile-pictures"
	memoryTransformation = "c_limit,w_800,h_800,q_auto:good,f_auto,dpr_auto"
	avatarTransformation = "c_fill,g_face,w_400,h_400,r_max/q_auto:good,f_auto"
)

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{cld: cld}, nil
}

// UploadMemoryImage uploads a post image and returns its secure URL.
func (s *CloudinaryService) UploadMemoryImage(ctx context.Context, file multipart.File) (string, error) {
	return s.upload(ctx, file, MemoryFolder, memoryTransformation)
}

// UploadProfilePicture uploads an avatar and returns its secure URL.
func (s *CloudinaryService) UploadProfilePicture(ctx context.Context, file multipart.File) (string, error) {
	return s.upload(ctx, file, ProfileFolder, avatarTransformation)
}

func (s *CloudinaryService) upload(ctx context.Context, file multipart.File, folder, transformation string) (string, error) {
	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		ResourceType:   "image",
		Transformation: transformation,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}

	url := uploadResult.SecureURL
	if url == "" {
		url = uploadResult.URL
	}
	if url == "" {
		return "", fmt.Errorf("no URL in Cloudinary response")
	}
	return url, nil
}

// DeleteImageByURL destroys a previously uploaded asset. Best effort: the
// caller has already committed to replacing the URL, so failures are logged
// and swallowed, never propagated.
func (s *CloudinaryService) DeleteImageByURL(ctx context.Context, imageURL string) {
	publicID := PublicIDFromURL(imageURL)
	if publicID == "" {
		return
	}

	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		log.Printf("Error deleting old image %s: %v", publicID, err)
	}
}

// PublicIDFromURL extracts the "folder/name" public id from a Cloudinary
// delivery URL by taking the last two path segments and stripping the file
// extension.
func PublicIDFromURL(imageURL string) string {
	parts := strings.Split(imageURL, "/")
	if len(parts) < 2 {
		return ""
	}
	publicID := strings.Join(parts[len(parts)-2:], "/")
	if idx := strings.LastIndex(publicID, "."); idx != -1 {
		publicID = publicID[:idx]
	}
	return publicID
}
