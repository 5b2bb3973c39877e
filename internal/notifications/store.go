package notifications

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("notification not found")

type Store interface {
	List(ctx context.Context) ([]Notification, error)
	Get(ctx context.Context, id uint) (*Notification, error)
	Create(ctx context.Context, n *Notification) error
	Update(ctx context.Context, n *Notification) error
	Delete(ctx context.Context, id uint) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// List returns every notification, newest id first.
func (s *GormStore) List(ctx context.Context) ([]Notification, error) {
	var list []Notification
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

func (s *GormStore) Get(ctx context.Context, id uint) (*Notification, error) {
	return get(s.db.WithContext(ctx), id)
}

func (s *GormStore) Create(ctx context.Context, n *Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// Update overwrites content and note. Concurrent edits are last-write-wins.
func (s *GormStore) Update(ctx context.Context, n *Notification) error {
	res := s.db.WithContext(ctx).Model(&Notification{ID: n.ID}).
		Select("content", "note").
		Updates(n)
	if res.Error != nil {
		return fmt.Errorf("update notification %d: %w", n.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := get(tx, id); err != nil {
			return err
		}
		if err := tx.Delete(&Notification{}, id).Error; err != nil {
			return fmt.Errorf("delete notification %d: %w", id, err)
		}
		return nil
	})
}

func get(tx *gorm.DB, id uint) (*Notification, error) {
	var n Notification
	if err := tx.First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find notification %d: %w", id, err)
	}
	return &n, nil
}
