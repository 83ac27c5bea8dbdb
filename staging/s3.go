package staging

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/JorgeNachtigall/pandas2redshift/internal/logging"
)

// Store is the object-storage surface the loader needs. Put uploads the
// staging artifact and returns the location the bulk-load statement should
// reference; Delete removes it afterward.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// WriteError indicates the staging upload failed. Nothing was persisted, so
// there is no artifact to clean up.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("uploading staging object %q: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// DeleteError indicates staging cleanup failed. The orchestrator reports it
// as a warning; it never fails an otherwise-successful load.
type DeleteError struct {
	Key string
	Err error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("deleting staging object %q: %v", e.Key, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// NewKey builds a staging key unique per invocation: the table name plus a
// random 32-hex suffix, under an optional prefix. Concurrent loads to the
// same table cannot collide.
func NewKey(prefix, table string) string {
	name := table + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// S3Config carries what is needed to reach the staging bucket. When the
// static key fields are empty the default AWS credential chain is used.
// Endpoint supports S3-compatible stores and local test stacks.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// s3API is the slice of the S3 client the store uses.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements Store on an S3 bucket.
type S3Store struct {
	client s3API
	bucket string
}

// NewS3Store builds an S3-backed store.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg, clientOpts...),
		bucket: cfg.Bucket,
	}, nil
}

// Put uploads the body under key and returns the s3:// location.
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return "", &WriteError{Key: key, Err: err}
	}
	location := "s3://" + s.bucket + "/" + key
	logging.Debug("staged %s", location)
	return location, nil
}

// Delete removes the staged object.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return &DeleteError{Key: key, Err: err}
	}
	return nil
}
