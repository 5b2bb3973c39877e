package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// Store is the user persistence used by the handlers and the admin gate.
type Store interface {
	List(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindForLogin(ctx context.Context, username string) (*User, error)
	RoleOf(ctx context.Context, id uint) (string, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User, withPassword bool) error
	SetPassword(ctx context.Context, id uint, hashed string) error
	Delete(ctx context.Context, id uint) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *GormStore) FindByID(ctx context.Context, id uint) (*User, error) {
	return first(s.db.WithContext(ctx), "id = ?", id)
}

func (s *GormStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return first(s.db.WithContext(ctx), "username = ?", username)
}

// FindForLogin matches username in any of its normalisation forms. The
// lowest id wins when several rows match.
func (s *GormStore) FindForLogin(ctx context.Context, username string) (*User, error) {
	return first(s.db.WithContext(ctx).Order("id ASC"), "username IN ?", UsernameForms(username))
}

// RoleOf returns the current role of user id, or "" when the user no longer
// exists.
func (s *GormStore) RoleOf(ctx context.Context, id uint) (string, error) {
	u, err := s.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// Create inserts u unless its username is already in use.
func (s *GormStore) Create(ctx context.Context, u *User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := usernameFree(tx, u.Username, 0); err != nil {
			return err
		}
		if err := tx.Create(u).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
}

// Update overwrites username, fullname, description and role of u, and the
// password only when withPassword is set.
func (s *GormStore) Update(ctx context.Context, u *User, withPassword bool) error {
	cols := []string{"username", "fullname", "description", "role"}
	if withPassword {
		cols = append(cols, "password")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := usernameFree(tx, u.Username, u.ID); err != nil {
			return err
		}
		res := tx.Model(&User{ID: u.ID}).Select(cols).Updates(u)
		if res.Error != nil {
			if isUniqueViolation(res.Error) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("update user %d: %w", u.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *GormStore) SetPassword(ctx context.Context, id uint, hashed string) error {
	res := s.db.WithContext(ctx).Model(&User{ID: id}).Update("password", hashed)
	if res.Error != nil {
		return fmt.Errorf("set password for user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := first(tx, "id = ?", id); err != nil {
			return err
		}
		if err := tx.Delete(&User{}, id).Error; err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		return nil
	})
}

func first(tx *gorm.DB, query string, arg any) (*User, error) {
	var u User
	if err := tx.First(&u, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// usernameFree fails with ErrUsernameTaken when another user than exceptID
// already holds username.
func usernameFree(tx *gorm.DB, username string, exceptID uint) error {
	var count int64
	q := tx.Model(&User{}).Where("username = ?", username)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
