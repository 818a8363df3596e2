package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/spec-kit/contacts-service/internal/config"
)

// ObjectPutter is the part of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// AvatarStore uploads user avatars to an S3-compatible bucket.
type AvatarStore struct {
	client    ObjectPutter
	bucket    string
	publicURL string
}

// NewS3AvatarStore builds a store from configuration. Static credentials are
// used when provided, otherwise the default AWS chain applies.
func NewS3AvatarStore(ctx context.Context, cfg config.StorageConfig) (*AvatarStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: S3_BUCKET is empty")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = defaultPublicURL(cfg)
	}
	return NewAvatarStore(client, cfg.Bucket, publicURL), nil
}

// NewAvatarStore wraps an existing client.
func NewAvatarStore(client ObjectPutter, bucket, publicURL string) *AvatarStore {
	return &AvatarStore{client: client, bucket: bucket, publicURL: strings.TrimSuffix(publicURL, "/")}
}

// Upload stores body under a fresh key for userID and returns its public URL.
func (s *AvatarStore) Upload(ctx context.Context, userID int64, filename, contentType string, body io.Reader) (string, error) {
	key := AvatarKey(userID, filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

// AvatarKey returns a unique object key that keeps the file extension.
func AvatarKey(userID int64, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("avatars/%d/%s%s", userID, uuid.New(), ext)
}

func defaultPublicURL(cfg config.StorageConfig) string {
	if cfg.Endpoint != "" {
		return strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}
