package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// NewDefaultS3Client loads the standard AWS SDK default credential/region
// chain (env vars, shared config, instance role) and returns a ready-to-use
// S3 client for NewS3RecordStore.
func NewDefaultS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindStorage, "store.NewDefaultS3Client", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// GCSRecordStore implements the RecordStore[T] shape against a Google
// Cloud Storage bucket: one object per record, keyed by id + ".json",
// wrapped in the same {version, record} envelope as the local file store.
type GCSRecordStore[T any] struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSRecordStore opens a record store rooted at bucket/prefix.
func NewGCSRecordStore[T any](client *storage.Client, bucket, prefix string) *GCSRecordStore[T] {
	return &GCSRecordStore[T]{client: client, bucket: bucket, prefix: prefix}
}

func (s *GCSRecordStore[T]) objectName(id string) string {
	return s.prefix + id + ".json"
}

// Save writes record under id, overwriting any existing object.
func (s *GCSRecordStore[T]) Save(ctx context.Context, id string, record T) error {
	const op = "store.GCSRecordStore.Save"
	data, err := json.Marshal(envelope[T]{Version: RecordVersion, Record: record})
	if err != nil {
		return xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	w := s.client.Bucket(s.bucket).Object(s.objectName(id)).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	if err := w.Close(); err != nil {
		return xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	return nil
}

// Load reads the record stored under id, KindNotFound if absent.
func (s *GCSRecordStore[T]) Load(ctx context.Context, id string) (T, error) {
	const op = "store.GCSRecordStore.Load"
	var zero T
	r, err := s.client.Bucket(s.bucket).Object(s.objectName(id)).NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return zero, xerrors.New(xerrors.KindNotFound, op, "no record with id "+id)
		}
		return zero, xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return zero, xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	return env.Record, nil
}

// Delete removes the object stored under id. Idempotent on a missing id.
func (s *GCSRecordStore[T]) Delete(ctx context.Context, id string) error {
	const op = "store.GCSRecordStore.Delete"
	err := s.client.Bucket(s.bucket).Object(s.objectName(id)).Delete(ctx)
	if err != nil && err != storage.ErrObjectNotExist {
		return xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	return nil
}

// S3RecordStore implements the RecordStore[T] shape against an S3-
// compatible bucket, the same one-object-per-record convention as
// GCSRecordStore.
type S3RecordStore[T any] struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3RecordStore opens a record store rooted at bucket/prefix.
func NewS3RecordStore[T any](client *s3.Client, bucket, prefix string) *S3RecordStore[T] {
	return &S3RecordStore[T]{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3RecordStore[T]) key(id string) string {
	return s.prefix + id + ".json"
}

// Save writes record under id, overwriting any existing object.
func (s *S3RecordStore[T]) Save(ctx context.Context, id string, record T) error {
	const op = "store.S3RecordStore.Save"
	data, err := json.Marshal(envelope[T]{Version: RecordVersion, Record: record})
	if err != nil {
		return xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	return nil
}

// Load reads the record stored under id.
func (s *S3RecordStore[T]) Load(ctx context.Context, id string) (T, error) {
	const op = "store.S3RecordStore.Load"
	var zero T
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return zero, xerrors.New(xerrors.KindNotFound, op, "no record with id "+id)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return zero, xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	return env.Record, nil
}

// Delete removes the object stored under id. Idempotent on a missing id.
func (s *S3RecordStore[T]) Delete(ctx context.Context, id string) error {
	const op = "store.S3RecordStore.Delete"
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	return nil
}
