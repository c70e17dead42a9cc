package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"favplaces/db"
	"favplaces/logger"
	"fmt"
	"io"
)

// ErrNotExist is returned by Load when the document was never saved
var ErrNotExist = errors.New("document does not exist")

// StorageAPI stores whole documents, every Save overwrites the previous content
type StorageAPI interface {
	Save(ctx context.Context, path string, reader io.Reader) (int64, error)
	Load(ctx context.Context, path string, writer io.Writer) (int64, error)
	Delete(ctx context.Context, path string) error
	GetBucket() *Bucket
}

type Storage struct {
	Bucket Bucket
}

var (
	defaultStorage StorageAPI
)

// Init creates the document storage configured in the environment
func Init() error {
	bucket, err := BucketFromConfig()
	if err != nil {
		return err
	}
	log := logger.Component("storage")
	log.Info().Uint8("type", uint8(bucket.StorageType)).Str("name", bucket.Name).Str("path", bucket.Path).Msg("Storage bucket")
	s, err := NewStorage(&bucket)
	if err != nil {
		return err
	}
	defaultStorage = s
	return nil
}

func NewStorage(bucket *Bucket) (StorageAPI, error) {
	switch bucket.StorageType {
	case StorageTypeFile:
		return NewDiskStorage(bucket), nil
	case StorageTypeS3:
		return NewS3Storage(bucket)
	case StorageTypeDB:
		if err := db.Init(); err != nil {
			return nil, err
		}
		return NewDBStorage(bucket, db.Instance)
	}
	return nil, fmt.Errorf("storage type unavailable: %d", bucket.StorageType)
}

func GetDefaultStorage() StorageAPI {
	if defaultStorage == nil {
		panic("no storage available")
	}
	return defaultStorage
}

func (s *Storage) GetBucket() *Bucket {
	return &s.Bucket
}

// LoadJSON decodes a whole document into v
func LoadJSON(ctx context.Context, s StorageAPI, path string, v any) error {
	buf := bytes.Buffer{}
	if _, err := s.Load(ctx, path, &buf); err != nil {
		return err
	}
	if err := json.Unmarshal(buf.Bytes(), v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// SaveJSON encodes v and overwrites the whole document
func SaveJSON(ctx context.Context, s StorageAPI, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	_, err = s.Save(ctx, path, bytes.NewReader(data))
	return err
}
