package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

const noSuchKey = "NoSuchKey"

// DocumentRepository stores original documents under their structure's
// document key.
type DocumentRepository struct {
	client *Client
	logger logging.Logger
}

var _ library.DocumentStore = (*DocumentRepository)(nil)

func NewDocumentRepository(client *Client, log logging.Logger) *DocumentRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &DocumentRepository{client: client, logger: log.Named("documents")}
}

// Put uploads data, replacing any object already at key.
func (r *DocumentRepository) Put(ctx context.Context, key, contentType string, data []byte) error {
	if key == "" {
		return errors.InvalidParam("document key is required")
	}
	if r.client.isClosed() {
		return ErrClientClosed
	}
	info, err := r.client.api.PutObject(ctx, r.client.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDocumentStorageFailed, "upload document").WithDetail(key)
	}
	r.logger.Debug("document stored",
		logging.String("key", key),
		logging.Int64("size", info.Size),
		logging.String("etag", info.ETag))
	return nil
}

// Get downloads the document at key. A missing key is NotFound.
func (r *DocumentRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if r.client.isClosed() {
		return nil, ErrClientClosed
	}
	obj, err := r.client.api.GetObject(ctx, r.client.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, r.translate(err, "download document", key)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, r.translate(err, "read document", key)
	}
	return data, nil
}

// Exists reports whether an object is stored at key.
func (r *DocumentRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.client.api.StatObject(ctx, r.client.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == noSuchKey {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeDocumentStorageFailed, "stat document").WithDetail(key)
}

// Delete removes the document; S3 treats a missing key as success.
func (r *DocumentRepository) Delete(ctx context.Context, key string) error {
	if r.client.isClosed() {
		return ErrClientClosed
	}
	if err := r.client.api.RemoveObject(ctx, r.client.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeDocumentStorageFailed, "delete document").WithDetail(key)
	}
	r.logger.Debug("document deleted", logging.String("key", key))
	return nil
}

func (r *DocumentRepository) translate(err error, op, key string) error {
	if minio.ToErrorResponse(err).Code == noSuchKey {
		return errors.NotFound("document not found").WithDetail(key).WithCause(err)
	}
	return errors.Wrap(err, errors.ErrCodeDocumentStorageFailed, op).WithDetail(key)
}

//Personal.AI order the ending
