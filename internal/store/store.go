package store

import (
	"context"
	"errors"

	"e2ee-msgcore/internal/domain"

	"gorm.io/gorm"
)

var ErrRecordNotFound = errors.New("store: record not found")

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) AutoMigrate(ctx context.Context) error {
	return s.DB.WithContext(ctx).AutoMigrate(&domain.Device{}, &domain.EncryptedMessage{})
}

func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
