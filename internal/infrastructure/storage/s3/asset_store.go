// Package s3 stores uploaded account assets in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/jobportal/account-service/internal/core/domain"
)

const defaultUploadTimeout = 30 * time.Second

// Config describes the bucket and how its objects are publicly addressed.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	UsePathStyle    bool
	Timeout         time.Duration
}

// Observer receives the outcome of every upload.
type Observer func(namespace string, err error, elapsed time.Duration)

type AssetStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
	timeout time.Duration
	observe Observer
}

// NewClient builds an S3 client. Static credentials are used when both keys
// are set, otherwise the default AWS credential chain applies.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// New wraps client. When cfg.PublicBaseURL is empty, object URLs are built
// from the endpoint and bucket.
func New(client *s3.Client, cfg Config, observe Observer) *AssetStore {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	if observe == nil {
		observe = func(string, error, time.Duration) {}
	}
	return &AssetStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: base,
		timeout: timeout,
		observe: observe,
	}
}

// Upload stores data under <namespace>/<uuid><ext> and returns its public URL.
// Any failure, including the timeout, wraps domain.ErrUpstream.
func (s *AssetStore) Upload(ctx context.Context, namespace, filename string, data []byte) (url string, err error) {
	start := time.Now()
	defer func() { s.observe(namespace, err, time.Since(start)) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := objectKey(namespace, filename)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mimetype.Detect(data).String()),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %v", domain.ErrUpstream, key, err)
	}
	return s.baseURL + "/" + key, nil
}

// Delete removes the object behind url. URLs outside this bucket are ignored.
func (s *AssetStore) Delete(ctx context.Context, url string) error {
	key, ok := s.keyFor(url)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("%w: delete %s: %v", domain.ErrUpstream, key, err)
	}
	return nil
}

func (s *AssetStore) keyFor(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func objectKey(namespace, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	return path.Join(namespace, uuid.NewString()+ext)
}
