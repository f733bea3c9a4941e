package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"confernet/internal/domain"
)

type filesEnvelope struct {
	Files []*domain.UploadedFile `json:"files"`
}

type uploadEnvelope struct {
	File *domain.UploadedFile `json:"file"`
}

type deleteFileRequest struct {
	FileURL string `json:"fileUrl"`
}

func (c *Client) UploadSpeakerFile(ctx context.Context, eventID, userID, fileName string, r io.Reader) (*domain.UploadedFile, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("upload file: failed to create form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("upload file: failed to read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upload file: failed to close form: %w", err)
	}

	var out uploadEnvelope
	err = c.do(ctx, call{
		op: "upload file", method: http.MethodPost, path: "/uploads/upload" + p(eventID, userID),
		rawBody: &buf, contentType: mw.FormDataContentType(), fallback: "File upload failed",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.File == nil {
		return &domain.UploadedFile{FileName: fileName, UploadedBy: userID}, nil
	}
	if err := c.check("upload file", out.File); err != nil {
		return nil, err
	}
	return out.File, nil
}

func (c *Client) DeleteSpeakerFile(ctx context.Context, eventID, userID, fileURL string) error {
	return c.do(ctx, call{
		op: "delete file", method: http.MethodDelete, path: "/uploads/delete" + p(eventID, userID),
		body: deleteFileRequest{FileURL: fileURL}, fallback: "File delete failed",
	}, nil)
}

func (c *Client) ListUploadedFiles(ctx context.Context, eventID string) (map[string][]*domain.UploadedFile, error) {
	var out filesEnvelope
	err := c.do(ctx, call{
		op: "list files", method: http.MethodGet, path: "/uploads/files" + p(eventID),
		fallback: "Failed to fetch files",
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := checkAll(c, "list files", out.Files); err != nil {
		return nil, err
	}
	grouped := make(map[string][]*domain.UploadedFile)
	for _, f := range out.Files {
		grouped[f.UploadedBy] = append(grouped[f.UploadedBy], f)
	}
	return grouped, nil
}
