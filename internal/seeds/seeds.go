package seeds

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/notifix/notifix/internal/auth"
	"github.com/notifix/notifix/internal/notifications"
)

type File struct {
	Users         []User         `yaml:"users"`
	Notifications []Notification `yaml:"notifications"`
}

type User struct {
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	Fullname    string `yaml:"fullname"`
	Description string `yaml:"description"`
	Role        string `yaml:"role"`
}

type Notification struct {
	Content string `yaml:"content"`
	Note    string `yaml:"note"`
}

type Result struct {
	UsersCreated         int
	UsersSkipped         int
	NotificationsCreated int
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, u := range f.Users {
		if auth.NormalizeUsername(u.Username) == "" || u.Password == "" {
			return nil, fmt.Errorf("users[%d]: username and password are required", i)
		}
		if u.Role != "" && !auth.ValidRole(u.Role) {
			return nil, fmt.Errorf("users[%d]: unknown role %q", i, u.Role)
		}
	}
	return &f, nil
}

// Apply creates the users that do not exist yet and, when the table is
// empty, the notifications.
func Apply(ctx context.Context, users auth.Store, notes notifications.Store, f *File) (Result, error) {
	var res Result

	for _, su := range f.Users {
		hashed, err := auth.HashPassword(su.Password)
		if err != nil {
			return res, err
		}

		role := su.Role
		if role == "" {
			role = auth.RoleUser
		}

		u := &auth.User{
			Username:    auth.NormalizeUsername(su.Username),
			Password:    hashed,
			Fullname:    su.Fullname,
			Description: su.Description,
			Role:        role,
		}
		if err := users.Create(ctx, u); err != nil {
			if errors.Is(err, auth.ErrUsernameTaken) {
				res.UsersSkipped++
				continue
			}
			return res, fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		res.UsersCreated++
	}

	existing, err := notes.List(ctx)
	if err != nil {
		return res, err
	}
	if len(existing) > 0 {
		return res, nil
	}

	for _, sn := range f.Notifications {
		if err := notes.Create(ctx, &notifications.Notification{Content: sn.Content, Note: sn.Note}); err != nil {
			return res, fmt.Errorf("seed notification: %w", err)
		}
		res.NotificationsCreated++
	}

	return res, nil
}
