// Package s3 implements the object store port against Amazon S3 (or any
// S3-compatible endpoint resolved through the standard AWS configuration).
package s3

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.trai.ch/zerr"

	"github.com/rocmforge/wheelhouse/internal/core/domain"
	"github.com/rocmforge/wheelhouse/internal/core/ports"
)

var _ ports.ObjectStore = (*Store)(nil)

// Store implements ports.ObjectStore backed by S3.
type Store struct {
	client *awss3.Client
}

// NewStore creates a Store using the ambient AWS configuration (environment,
// shared config, instance role).
func NewStore(ctx context.Context) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrObjectStoreUnavailable.Error())
	}
	return &Store{client: awss3.NewFromConfig(cfg)}, nil
}

// Exists reports whether an object is present at the given key.
func (s *Store) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, "failed to stat object"), "key", key)
	}
	return true, nil
}

// PutFile uploads the local file at path to the given key.
func (s *Store) PutFile(ctx context.Context, bucket, key, path string) error {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open file for upload"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, "failed to upload object"), "key", key), "path", path)
	}
	return nil
}

// Get opens the object at the given key for reading.
func (s *Store) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to download object"), "key", key)
	}
	return out.Body, nil
}

// List returns the keys of all objects under the given prefix.
func (s *Store) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	paginator := awss3.NewListObjectsV2Paginator(s.client, &awss3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to list objects"), "prefix", prefix)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}
