package session

import "slices"

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

// Flash is a message shown once on the next rendered page.
type Flash struct {
	Level   Level  `json:"l"`
	Message string `json:"m"`
}

// Session is the per-caller state carried in the signed cookie.
type Session struct {
	UserID   uint    `json:"uid,omitempty"`
	Username string  `json:"usr,omitempty"`
	Role     string  `json:"role,omitempty"`
	Flashes  []Flash `json:"fl,omitempty"`
}

func (s *Session) LoggedIn() bool {
	return s != nil && s.UserID != 0
}

func (s *Session) IsAdmin() bool {
	return s.LoggedIn() && s.Role == "admin"
}

// SignIn replaces the identity but keeps pending flashes.
func (s *Session) SignIn(userID uint, username, role string) {
	s.UserID = userID
	s.Username = username
	s.Role = role
}

// Clear drops identity and pending flashes.
func (s *Session) Clear() {
	*s = Session{}
}

func (s *Session) AddFlash(level Level, message string) {
	s.Flashes = append(s.Flashes, Flash{Level: level, Message: message})
}

// PopFlashes returns pending flashes and forgets them.
func (s *Session) PopFlashes() []Flash {
	flashes := slices.Clone(s.Flashes)
	s.Flashes = nil
	return flashes
}

func (s *Session) empty() bool {
	return !s.LoggedIn() && len(s.Flashes) == 0
}
