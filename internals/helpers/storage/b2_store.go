package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/kurin/blazer/b2"
	"github.com/pkg/errors"

	"portalku_backend/internals/configs"
)

// B2Store is the Backblaze B2 driver. Bucket names are B2_BUCKET_PREFIX + logical name.
type B2Store struct {
	client *b2.Client
	prefix string

	mu      sync.Mutex
	buckets map[string]*b2.Bucket
}

func NewB2StoreFromEnv(ctx context.Context) (*B2Store, error) {
	id := configs.GetEnv("B2_ACCOUNT_ID")
	key := configs.GetEnv("B2_APPLICATION_KEY")
	if id == "" || key == "" {
		return nil, fmt.Errorf("missing env: B2_ACCOUNT_ID/B2_APPLICATION_KEY")
	}
	client, err := b2.NewClient(ctx, id, key)
	if err != nil {
		return nil, errors.Wrap(err, "b2.NewClient")
	}
	return &B2Store{
		client:  client,
		prefix:  configs.String("B2_BUCKET_PREFIX"),
		buckets: map[string]*b2.Bucket{},
	}, nil
}

func (s *B2Store) bucket(ctx context.Context, name string) (*b2.Bucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[name]; ok {
		return b, nil
	}
	b, err := s.client.Bucket(ctx, s.prefix+name)
	if err != nil {
		return nil, errors.Wrapf(err, "b2 bucket %s", s.prefix+name)
	}
	s.buckets[name] = b
	return b, nil
}

func (s *B2Store) Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	b, err := s.bucket(ctx, bucket)
	if err != nil {
		return err
	}
	w := b.Object(NormalizeKey(key)).NewWriter(ctx).WithAttrs(&b2.Attrs{ContentType: contentType})
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return errors.Wrap(err, "b2 write")
	}
	return errors.Wrap(w.Close(), "b2 close")
}

func (s *B2Store) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	b, err := s.bucket(ctx, bucket)
	if err != nil {
		return "", err
	}
	u, err := b.Object(NormalizeKey(key)).AuthURL(ctx, ttl, "")
	if err != nil {
		return "", errors.Wrap(err, "b2 auth url")
	}
	return u.String(), nil
}

func (s *B2Store) Remove(ctx context.Context, bucket string, keys ...string) error {
	keys = normalizeKeys(keys)
	if len(keys) == 0 {
		return nil
	}
	b, err := s.bucket(ctx, bucket)
	if err != nil {
		return err
	}
	var firstErr error
	for _, k := range keys {
		if err := b.Object(k).Delete(ctx); err != nil && !b2.IsNotExist(err) && firstErr == nil {
			firstErr = errors.Wrapf(err, "b2 delete %s", k)
		}
	}
	return firstErr
}
