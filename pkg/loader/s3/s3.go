// Package s3 provides a file source backed by an S3-compatible object store.
package s3

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/singleflight"

	"meridian/pkg/loader"
)

// FileSource loads file contents from an S3 bucket using the AWS SDK v2.
// Retrieved objects are cached by file ID and path.
type FileSource struct {
	bucket string
	client *s3.Client

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewFileSourceWithClient creates a FileSource using an existing s3.Client.
// Useful when a preconfigured client should be shared.
func NewFileSourceWithClient(bucket string, client *s3.Client) *FileSource {
	return &FileSource{
		bucket: bucket,
		client: client,
		cache:  make(map[string][]byte),
	}
}

// NewFileSourceParams defines the configuration for creating a FileSource.
//
// Endpoint allows overriding the S3 endpoint for S3-compatible storage
// like MinIO. AccessKey and SecretKey provide static credentials.
type NewFileSourceParams struct {
	Bucket       string
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// NewFileSource creates a FileSource with an AWS S3 client configured from
// the provided parameters.
func NewFileSource(ctx context.Context, params NewFileSourceParams) (*FileSource, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(params.Region),
		config.WithBaseEndpoint(params.Endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKey,
			params.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = params.UsePathStyle
	})

	return &FileSource{
		bucket: params.Bucket,
		client: client,
		cache:  make(map[string][]byte),
	}, nil
}

// GetFileBytes retrieves the contents of the given file from the configured
// S3 bucket.
func (s *FileSource) GetFileBytes(ctx context.Context, file loader.DocumentFile) ([]byte, error) {
	cacheKey := loader.CacheKey(file)

	s.cacheMu.RLock()
	if cached, ok := s.cache[cacheKey]; ok {
		s.cacheMu.RUnlock()
		return cached, nil
	}
	s.cacheMu.RUnlock()

	result, err, _ := s.group.Do(cacheKey, func() (any, error) {
		s.cacheMu.RLock()
		if cached, ok := s.cache[cacheKey]; ok {
			s.cacheMu.RUnlock()
			return cached, nil
		}
		s.cacheMu.RUnlock()

		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(file.FilePath),
		})
		if err != nil {
			return nil, err
		}
		defer out.Body.Close()

		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, out.Body); err != nil {
			return nil, err
		}

		byts := buf.Bytes()

		s.cacheMu.Lock()
		s.cache[cacheKey] = byts
		s.cacheMu.Unlock()

		return byts, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
