package domain

import (
	"context"
	"io"
	"time"
)

// UploadedFile is a speaker's material attached to an event.
type UploadedFile struct {
	FileURL    string    `json:"fileUrl" validate:"required"`
	FileName   string    `json:"fileName"`
	UploadedBy string    `json:"uploadedBy" validate:"required"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UploadAPI covers the backend's speaker file endpoints.
type UploadAPI interface {
	UploadSpeakerFile(ctx context.Context, eventID, userID, fileName string, r io.Reader) (*UploadedFile, error)
	DeleteSpeakerFile(ctx context.Context, eventID, userID, fileURL string) error
	// ListUploadedFiles returns the event's files grouped by uploader id.
	ListUploadedFiles(ctx context.Context, eventID string) (map[string][]*UploadedFile, error)
}

// Backend is the full external REST API.
type Backend interface {
	EventAPI
	UserAPI
	MessageAPI
	UploadAPI
	RegistrationAPI
}
