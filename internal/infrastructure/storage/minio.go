package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/surendrasinghc80/chaicode-course-rag/pkg/config"
)

// MinIOClient archives raw caption files so an ingested course can be
// re-indexed later without asking instructors to re-upload.
type MinIOClient struct {
	client *minio.Client
	bucket string
}

// NewMinIOClient creates a MinIO client and ensures the captions bucket exists
func NewMinIOClient(cfg *config.StorageConfig) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	client := &MinIOClient{
		client: minioClient,
		bucket: cfg.BucketName,
	}

	ctx := context.Background()
	if err := client.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return client, nil
}

func (m *MinIOClient) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// captionObjectName namespaces caption files by course
func captionObjectName(courseID, fileName string) string {
	return fmt.Sprintf("captions/%s/%s", courseID, fileName)
}

// SaveCaptionFile stores a raw caption file under the course's prefix
func (m *MinIOClient) SaveCaptionFile(ctx context.Context, courseID, fileName, content string) error {
	reader := strings.NewReader(content)
	_, err := m.client.PutObject(ctx, m.bucket, captionObjectName(courseID, fileName),
		reader, int64(reader.Len()), minio.PutObjectOptions{ContentType: "text/vtt"})
	if err != nil {
		return fmt.Errorf("failed to store caption file: %w", err)
	}
	return nil
}

// GetCaptionFile retrieves a previously archived caption file
func (m *MinIOClient) GetCaptionFile(ctx context.Context, courseID, fileName string) (string, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, captionObjectName(courseID, fileName), minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get caption file: %w", err)
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("failed to read caption file: %w", err)
	}
	return string(content), nil
}

// ListCaptionFiles lists the archived caption files of a course
func (m *MinIOClient) ListCaptionFiles(ctx context.Context, courseID string) ([]string, error) {
	prefix := fmt.Sprintf("captions/%s/", courseID)
	var names []string
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list caption files: %w", obj.Err)
		}
		names = append(names, strings.TrimPrefix(obj.Key, prefix))
	}
	return names, nil
}

// DeleteCourseCaptions removes every archived caption file of a course
func (m *MinIOClient) DeleteCourseCaptions(ctx context.Context, courseID string) error {
	prefix := fmt.Sprintf("captions/%s/", courseID)
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return fmt.Errorf("failed to list caption files: %w", obj.Err)
		}
		if err := m.client.RemoveObject(ctx, m.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to delete caption file %s: %w", obj.Key, err)
		}
	}
	return nil
}
