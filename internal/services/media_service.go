package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

type MediaService struct {
	client *minio.Client
	bucket string
}

func NewMediaService(client *minio.Client, bucket string) *MediaService {
	return &MediaService{client: client, bucket: bucket}
}

// DecodeDataURL strips an optional data-URL prefix ("data:image/...;base64,")
// and decodes the remaining base64 payload.
func DecodeDataURL(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		if idx := strings.Index(payload, "base64,"); idx >= 0 {
			payload = payload[idx+len("base64,"):]
		}
	}
	return base64.StdEncoding.DecodeString(payload)
}

// Store writes the decoded image to the bucket as <uuid>.png and returns
// the object id.
func (s *MediaService) Store(ctx context.Context, data []byte) (string, error) {
	id := uuid.NewString() + ".png"
	_, err := s.client.PutObject(ctx, s.bucket, id, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "image/png"})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Fetch streams a previously stored object. The caller closes the reader.
func (s *MediaService) Fetch(ctx context.Context, id string) (io.ReadCloser, int64, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, "", err
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, "", err
	}
	contentType := stat.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	return obj, stat.Size, contentType, nil
}
