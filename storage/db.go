package storage

import (
	"bytes"
	"context"
	"errors"
	"io"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is a whole stored document, keyed by its path
type Document struct {
	Path      string `gorm:"type:varchar(255);primaryKey"`
	Content   []byte
	UpdatedAt int64 `gorm:"autoUpdateTime"`
}

type DBStorage struct {
	Storage
	db *gorm.DB
}

func NewDBStorage(bucket *Bucket, db *gorm.DB) (*DBStorage, error) {
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, err
	}
	return &DBStorage{
		Storage: Storage{
			Bucket: *bucket,
		},
		db: db,
	}, nil
}

func (s *DBStorage) Save(ctx context.Context, path string, reader io.Reader) (int64, error) {
	buf := bytes.Buffer{}
	n, err := io.Copy(&buf, reader)
	if err != nil {
		return 0, err
	}
	doc := Document{Path: path, Content: buf.Bytes()}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&doc).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *DBStorage) Load(ctx context.Context, path string, writer io.Writer) (int64, error) {
	doc := Document{}
	err := s.db.WithContext(ctx).Where("path = ?", path).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotExist
	}
	if err != nil {
		return 0, err
	}
	n, err := writer.Write(doc.Content)
	return int64(n), err
}

func (s *DBStorage) Delete(ctx context.Context, path string) error {
	return s.db.WithContext(ctx).Where("path = ?", path).Delete(&Document{}).Error
}
