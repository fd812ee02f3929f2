package storage

import (
	"bytes"
	"context"
	"fmt"

	"member-service/src/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

// PhotoStorage stores profile images in object storage; the member row only
// keeps the returned path.
type PhotoStorage struct {
	Client *minio.Client
	Bucket string
	Log    log.Log
}

func NewPhotoStorage(v *viper.Viper, logger log.Log) (*PhotoStorage, error) {
	endpoint := v.GetString("storage.endpoint")
	if endpoint == "" {
		return nil, nil
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(v.GetString("storage.access_key"), v.GetString("storage.secret_key"), ""),
		Secure: v.GetBool("storage.use_ssl"),
	})
	if err != nil {
		return nil, err
	}

	bucket := v.GetString("storage.bucket")
	if bucket == "" {
		bucket = "member-media"
	}

	return &PhotoStorage{
		Client: client,
		Bucket: bucket,
		Log:    logger,
	}, nil
}

func (s *PhotoStorage) UploadProfileImage(ctx context.Context, memberUUID string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	path := fmt.Sprintf("profile_images/%s", memberUUID)

	_, err := s.Client.PutObject(ctx, s.Bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.Log.Error("photo-storage", err.Error(), "UploadProfileImage", path)
		return "", err
	}
	return path, nil
}

func (s *PhotoStorage) Remove(ctx context.Context, path string) error {
	return s.Client.RemoveObject(ctx, s.Bucket, path, minio.RemoveObjectOptions{})
}
