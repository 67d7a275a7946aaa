package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// CloudflareR2Storage implements Storage interface for Cloudflare R2
// R2 is S3-compatible, so we use the same SDK
type CloudflareR2Storage struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
}

// NewCloudflareR2Storage creates a new Cloudflare R2 storage instance
func NewCloudflareR2Storage(cfg Config) (*CloudflareR2Storage, error) {
	// R2 endpoint format: https://<account_id>.r2.cloudflarestorage.com
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required for Cloudflare R2")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required for Cloudflare R2")
	}

	awsConfig := &aws.Config{
		Region:           aws.String("auto"),
		Endpoint:         aws.String(cfg.Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create R2 session: %w", err)
	}

	return &CloudflareR2Storage{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.Bucket,
	}, nil
}

// Save uploads a recording to R2.
// S3 has no exclusive create here, so names are checked with HEAD first;
// two concurrent uploads of the same name can still race.
func (s *CloudflareR2Storage) Save(ctx context.Context, names Namer, reader io.Reader, contentType string) (string, int64, error) {
	name, err := s.freeName(ctx, names)
	if err != nil {
		return "", 0, err
	}

	body := &countingReader{r: reader}
	input := &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		Body:        body,
		ContentType: aws.String(contentType),
	}

	// Multipart uploads are aborted by the uploader on failure,
	// so no partial object is left behind
	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return "", body.n, fmt.Errorf("failed to upload to R2: %w", err)
	}

	return name, body.n, nil
}

func (s *CloudflareR2Storage) freeName(ctx context.Context, names Namer) (string, error) {
	for attempt := 0; attempt < MaxNameAttempts; attempt++ {
		name := names(attempt)
		if err := validateName(name); err != nil {
			return "", err
		}

		exists, err := s.exists(ctx, name)
		if err != nil {
			return "", err
		}
		if !exists {
			return name, nil
		}
	}
	return "", ErrExists
}

// Ping checks that the bucket is reachable
func (s *CloudflareR2Storage) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to reach R2 bucket: %w", err)
	}
	return nil
}

func (s *CloudflareR2Storage) exists(ctx context.Context, name string) (bool, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	}

	_, err := s.client.HeadObjectWithContext(ctx, input)
	if err == nil {
		return true, nil
	}

	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("failed to check object in R2: %w", err)
}
