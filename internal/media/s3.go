package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/ayushmaan703/videotube/internal/models"
)

// S3Config holds the settings for the S3-backed Storage.
type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Storage stores media blobs in an S3 bucket. The StorageID of a MediaRef
// is the object key.
type S3Storage struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Storage builds an S3Storage from static credentials.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &S3Storage{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

// Upload stores the blob under a fresh key inside folder and returns its
// public URL together with the key.
func (s *S3Storage) Upload(ctx context.Context, body io.Reader, contentType, folder string) (models.MediaRef, error) {
	key := fmt.Sprintf("%s/%s", strings.Trim(folder, "/"), uuid.New().String())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return models.MediaRef{}, fmt.Errorf("upload object: %w", err)
	}

	return models.MediaRef{
		URL:       fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key),
		StorageID: key,
	}, nil
}

// Delete removes the object behind storageID. Deleting a missing object is
// not an error in S3, which matches the best-effort cleanup semantics the
// callers rely on.
func (s *S3Storage) Delete(ctx context.Context, storageID string) error {
	if storageID == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageID),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
