package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Uploader hosts images and returns the URL they are served from.
type Uploader interface {
	Upload(ctx context.Context, prefix, filename string, body io.Reader, contentType string) (string, error)
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Uploader struct {
	client        putObjectAPI
	bucket        string
	region        string
	publicBaseURL string
}

type S3Options struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

func NewS3Uploader(ctx context.Context, opts S3Options) (*S3Uploader, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "could not load aws config")
	}
	return newS3Uploader(s3.NewFromConfig(cfg), opts), nil
}

func newS3Uploader(client putObjectAPI, opts S3Options) *S3Uploader {
	return &S3Uploader{
		client:        client,
		bucket:        opts.Bucket,
		region:        opts.Region,
		publicBaseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
	}
}

// Upload stores body under prefix with a random name that keeps the original
// extension, and returns its public URL.
func (s *S3Uploader) Upload(ctx context.Context, prefix, filename string, body io.Reader, contentType string) (string, error) {
	key := prefix + uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrapf(err, "could not upload %s", key)
	}
	return s.PublicURL(key), nil
}

func (s *S3Uploader) PublicURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
