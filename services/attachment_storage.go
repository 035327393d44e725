package services

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// AttachmentStorage issues upload slots for document attachments. The file bytes never
// pass through the API.
type AttachmentStorage interface {
	PresignUpload(ctx context.Context, documentID, fileName string) (*PresignedUpload, error)
}

type PresignedUpload struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

const presignTTL = 15 * time.Minute

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// AttachmentPrefix is the key prefix all attachments of a document live under.
func AttachmentPrefix(documentID string) string {
	return fmt.Sprintf("documents/%s/", documentID)
}

// AttachmentKey builds a collision-free object key for fileName.
func AttachmentKey(documentID, fileName string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	base = unsafeFileChars.ReplaceAllString(base, "_")
	if base == "" || base == "." || base == "/" {
		base = "file"
	}
	return AttachmentPrefix(documentID) + uuid.NewString() + "-" + base
}

type S3AttachmentStorage struct {
	presigner *s3.PresignClient
	bucket    string
}

func NewS3AttachmentStorage(client *s3.Client, bucket string) *S3AttachmentStorage {
	return &S3AttachmentStorage{presigner: s3.NewPresignClient(client), bucket: bucket}
}

func (s *S3AttachmentStorage) PresignUpload(ctx context.Context, documentID, fileName string) (*PresignedUpload, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, invalid("file_name", "is required")
	}
	key := AttachmentKey(documentID, fileName)
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to presign attachment upload: %w", err)
	}
	return &PresignedUpload{URL: req.URL, Method: req.Method, Key: key, ExpiresAt: time.Now().Add(presignTTL)}, nil
}
