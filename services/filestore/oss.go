package filestore

import (
	"context"
	"io"
	"net/http"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core"
)

// OSSStore keeps uploaded files in an Alibaba Cloud OSS bucket.
type OSSStore struct {
	bucket *oss.Bucket
}

var _ core.FileStore = (*OSSStore)(nil)

func NewOSSStore(conf *core.Config) (*OSSStore, error) {
	client, err := oss.New(conf.OSS.Endpoint, conf.OSS.AccessKeyID, conf.OSS.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "creating OSS client")
	}
	bucket, err := client.Bucket(conf.OSS.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "opening OSS bucket")
	}
	return &OSSStore{bucket: bucket}, nil
}

func (s *OSSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	opts := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	return errors.Wrap(s.bucket.PutObject(key, r, opts...), "putting object")
}

func (s *OSSStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.bucket.GetObject(key, oss.WithContext(ctx))
	if err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == http.StatusNotFound {
			return nil, core.ErrFileNotFound
		}
		return nil, errors.Wrap(err, "getting object")
	}
	return rc, nil
}

func (s *OSSStore) Delete(ctx context.Context, key string) error {
	return errors.Wrap(s.bucket.DeleteObject(key, oss.WithContext(ctx)), "deleting object")
}
