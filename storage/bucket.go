package storage

import (
	"favplaces/config"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type StorageType uint8

const (
	StorageTypeFile StorageType = 0
	StorageTypeS3   StorageType = 1
	StorageTypeDB   StorageType = 2
)

type Bucket struct {
	Name        string // S3 bucket name
	StorageType StorageType
	Path        string // Path on a drive or a prefix in a S3 bucket
	AuthDetails string // Authentication details. In case of S3 bucket - "key:secret"
	Region      string
	Endpoint    string
}

// BucketFromConfig describes where documents live according to the environment
func BucketFromConfig() (Bucket, error) {
	switch config.STORAGE_TYPE {
	case config.StorageTypeFile:
		return Bucket{StorageType: StorageTypeFile, Path: config.DATA_DIR}, nil
	case config.StorageTypeS3:
		if config.S3_BUCKET == "" {
			return Bucket{}, fmt.Errorf("S3_BUCKET is required for %q storage", config.STORAGE_TYPE)
		}
		prefix := config.S3_PREFIX
		if prefix == "" {
			prefix = strings.TrimPrefix(config.DATA_DIR, "./")
		}
		return Bucket{
			Name:        config.S3_BUCKET,
			StorageType: StorageTypeS3,
			Path:        prefix,
			AuthDetails: config.S3_AUTH,
			Region:      config.S3_REGION,
			Endpoint:    config.S3_ENDPOINT,
		}, nil
	case config.StorageTypeDB:
		return Bucket{StorageType: StorageTypeDB}, nil
	}
	return Bucket{}, fmt.Errorf("unknown storage type %q", config.STORAGE_TYPE)
}

// GetRemotePath returns the object key for a document path
func (b *Bucket) GetRemotePath(p string) string {
	return strings.TrimPrefix(path.Join(b.Path, p), "/")
}

func (b *Bucket) CreateSVC() (*s3.S3, error) {
	cfg := aws.NewConfig().WithRegion(b.Region)
	if b.Endpoint != "" {
		cfg = cfg.WithEndpoint(b.Endpoint).WithS3ForcePathStyle(true)
	}
	if b.AuthDetails != "" {
		key, secret, found := strings.Cut(b.AuthDetails, ":")
		if !found {
			return nil, fmt.Errorf("bucket %s: auth details must be key:secret", b.Name)
		}
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(key, secret, ""))
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	return s3.New(sess), nil
}
