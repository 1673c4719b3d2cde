package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"portalku_backend/internals/configs"
)

/* =======================================================================
   Aliyun OSS driver
======================================================================= */

type OSSStore struct {
	client *oss.Client
	prefix string

	mu      sync.Mutex
	buckets map[string]*oss.Bucket
}

func normalizeEndpoint(ep string) string {
	ep = strings.TrimSpace(ep)
	if ep == "" {
		return ep
	}
	if strings.HasPrefix(ep, "http://") || strings.HasPrefix(ep, "https://") {
		return ep
	}
	return "https://" + ep
}

// NewOSSStoreFromEnv membaca ALI_OSS_ENDPOINT / ACCESS_KEY / SECRET_KEY (+ SECURITY_TOKEN opsional).
func NewOSSStoreFromEnv() (*OSSStore, error) {
	endpoint := normalizeEndpoint(configs.GetEnv("ALI_OSS_ENDPOINT"))
	ak := configs.GetEnv("ALI_OSS_ACCESS_KEY")
	sk := configs.GetEnv("ALI_OSS_SECRET_KEY")
	sts := configs.GetEnv("ALI_OSS_SECURITY_TOKEN")
	if endpoint == "" || ak == "" || sk == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY")
	}

	var (
		client *oss.Client
		err    error
	)
	if sts != "" {
		client, err = oss.New(endpoint, ak, sk, oss.SecurityToken(sts))
	} else {
		client, err = oss.New(endpoint, ak, sk)
	}
	if err != nil {
		return nil, errors.Wrap(err, "oss.New")
	}

	return &OSSStore{
		client:  client,
		prefix:  configs.String("ALI_OSS_BUCKET_PREFIX"),
		buckets: map[string]*oss.Bucket{},
	}, nil
}

func (s *OSSStore) bucket(name string) (*oss.Bucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[name]; ok {
		return b, nil
	}
	physical := s.prefix + name
	b, err := s.client.Bucket(physical)
	if err != nil {
		return nil, errors.Wrapf(err, "client.Bucket(%s)", physical)
	}
	// Verifikasi ringan lokasi bucket
	if loc, err := s.client.GetBucketLocation(physical); err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 403 && se.Code == "AccessDenied" {
			log.Printf("[OSS] warn: skip location check due to AccessDenied (bucket=%s)", physical)
		} else {
			return nil, errors.Wrapf(err, "verify bucket %s", physical)
		}
	} else {
		log.Printf("[OSS] bucket %s location: %s", physical, loc)
	}
	s.buckets[name] = b
	return b, nil
}

func (s *OSSStore) Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("attachment"),
	}
	if size >= 0 {
		opts = append(opts, oss.ContentLength(size))
	}
	return b.PutObject(NormalizeKey(key), r, opts...)
}

func (s *OSSStore) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return "", err
	}
	secs := int64(ttl / time.Second)
	if secs <= 0 {
		secs = 60
	}
	return b.SignURL(NormalizeKey(key), oss.HTTPGet, secs)
}

func (s *OSSStore) Remove(ctx context.Context, bucket string, keys ...string) error {
	keys = normalizeKeys(keys)
	if len(keys) == 0 {
		return nil
	}
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	if len(keys) == 1 {
		return b.DeleteObject(keys[0], oss.WithContext(ctx))
	}
	for i := 0; i < len(keys); i += 1000 {
		end := i + 1000
		if end > len(keys) {
			end = len(keys)
		}
		if _, err := b.DeleteObjects(keys[i:end], oss.DeleteObjectsQuiet(true), oss.WithContext(ctx)); err != nil {
			return errors.Wrapf(err, "delete batch %d-%d", i, end)
		}
	}
	return nil
}
