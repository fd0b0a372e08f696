package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/df07/go-sphere-tracer/pkg/core"
)

// UploadTimeout bounds a single upload
const UploadTimeout = 30 * time.Second

// ErrNoBucket is returned when uploading without a configured bucket
var ErrNoBucket = errors.New("no S3 bucket configured")

// Config holds the S3 connection settings
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // Optional, for S3 compatible stores
	AccessKey string // Optional, falls back to the default credential chain
	SecretKey string
	Prefix    string // Key prefix, defaults to "renders"
}

// ConfigFromEnv reads the S3_* environment variables
func ConfigFromEnv() Config {
	return Config{
		Bucket:    os.Getenv("S3_BUCKET"),
		Region:    getEnv("S3_REGION", "us-east-1"),
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		Prefix:    getEnv("S3_PREFIX", "renders"),
	}
}

// Enabled reports whether a bucket is configured
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// Uploader publishes encoded renders to an S3 bucket
type Uploader struct {
	client s3iface.S3API
	config Config
	logger core.Logger
}

// NewUploader creates an uploader with its own S3 session
func NewUploader(config Config, logger core.Logger) (*Uploader, error) {
	if !config.Enabled() {
		return nil, ErrNoBucket
	}

	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
	}
	if config.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, "")
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return newUploaderWithClient(s3.New(sess), config, logger), nil
}

func newUploaderWithClient(client s3iface.S3API, config Config, logger core.Logger) *Uploader {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Uploader{client: client, config: config, logger: logger}
}

// Key builds the object key for a render of sceneName finished at t
func (u *Uploader) Key(sceneName, extension string, t time.Time) string {
	filename := fmt.Sprintf("render_%s.%s", t.Format("20060102_150405"), extension)
	return path.Join(u.config.Prefix, sceneName, filename)
}

// Upload stores data under key and returns its s3:// location
func (u *Uploader) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	size := int64(len(data))
	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.config.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	u.logger.Printf("Uploaded %s to S3 (%d bytes)", key, size)
	return fmt.Sprintf("s3://%s/%s", u.config.Bucket, key), nil
}

// getEnv returns the environment variable or fallback when unset
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
