package adapter

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Storage archives raw artifacts such as voice recordings in Cloud Storage
type Storage interface {
	// Upload writes r to key and returns the gs:// URI of the object
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	// Get opens an archived object
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// storageClient implements Storage interface using Cloud Storage
type storageClient struct {
	bucketName string
	client     *storage.Client
}

// NewStorage creates a new Cloud Storage client
func NewStorage(ctx context.Context, bucketName string) (Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.T(model.TagStoreUnavailable))
	}

	return &storageClient{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *storageClient) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	writer := s.client.Bucket(s.bucketName).Object(key).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return "", goerr.Wrap(err, "failed to write object",
			goerr.V("bucket", s.bucketName),
			goerr.V("key", key),
			goerr.T(model.TagStoreUnavailable))
	}

	// The object is committed on Close
	if err := writer.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to commit object",
			goerr.V("bucket", s.bucketName),
			goerr.V("key", key),
			goerr.T(model.TagStoreUnavailable))
	}

	return "gs://" + s.bucketName + "/" + key, nil
}

func (s *storageClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := s.client.Bucket(s.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read from storage", goerr.V("key", key), goerr.T(model.TagStoreUnavailable))
	}

	return reader, nil
}
