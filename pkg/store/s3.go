package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// S3API is the subset of the S3 client used by S3Store. It exists so tests
// can substitute a fake without a live bucket.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps documents as objects in an S3 bucket. The S3 client is
// initialized lazily on first use so constructing the store never touches
// the network.
type S3Store struct {
	bucket string
	logger zerolog.Logger

	mu      sync.Mutex
	client  S3API
	initErr error
}

// NewS3Store creates an object-storage-backed store for the named bucket.
func NewS3Store(bucket string, logger zerolog.Logger) *S3Store {
	return &S3Store{
		bucket: bucket,
		logger: logger.With().Str("component", "s3-store").Str("bucket", bucket).Logger(),
	}
}

// SetClient injects a pre-built S3 client (for testing).
func (s *S3Store) SetClient(client S3API) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
}

func (s *S3Store) getClient(ctx context.Context) (S3API, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	if s.initErr != nil {
		return nil, s.initErr
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to initialize S3 client")
		s.initErr = err
		return nil, err
	}
	s.client = s3.NewFromConfig(cfg)
	s.logger.Info().Msg("S3 client initialized")
	return s.client, nil
}

// Read returns the object at path, or nil if absent or unreadable.
func (s *S3Store) Read(ctx context.Context, path string) []byte {
	client, err := s.getClient(ctx)
	if err != nil {
		return nil
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if !errors.As(err, &notFound) {
			s.logger.Warn().Err(err).Str("path", path).Msg("Failed to read from S3")
		}
		return nil
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to read S3 object body")
		return nil
	}
	return data
}

// Write stores data as an object at path.
func (s *S3Store) Write(ctx context.Context, path string, data []byte) error {
	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to write to S3")
		return err
	}
	s.logger.Debug().Str("path", path).Msg("Document saved to S3")
	return nil
}

// Exists reports whether an object is present at path.
func (s *S3Store) Exists(ctx context.Context, path string) bool {
	client, err := s.getClient(ctx)
	if err != nil {
		return false
	}
	_, err = client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var notFound *types.NotFound
		if !errors.As(err, &notFound) {
			s.logger.Warn().Err(err).Str("path", path).Msg("Failed to check S3 existence")
		}
		return false
	}
	return true
}

// Delete removes the object at path.
func (s *S3Store) Delete(ctx context.Context, path string) bool {
	if !s.Exists(ctx, path) {
		return false
	}
	client, err := s.getClient(ctx)
	if err != nil {
		return false
	}
	if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to delete from S3")
		return false
	}
	s.logger.Info().Str("path", path).Msg("S3 document deleted")
	return true
}
