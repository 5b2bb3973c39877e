package auth

import (
	"crypto/subtle"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword compares plain against the stored value. Rows written before
// hashing was introduced hold the password itself; those are compared in
// constant time and reported as legacy so the caller can rehash them.
func CheckPassword(stored, plain string) (ok, legacy bool) {
	if isHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil, false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1, true
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// CheckUnknown spends the same bcrypt work as CheckPassword does for a real
// user and always fails, so a missing username is not faster to reject.
func CheckUnknown(plain string) bool {
	dummyOnce.Do(func() {
		hashed, err := bcrypt.GenerateFromPassword([]byte("notifix-unknown-user"), bcrypt.DefaultCost)
		if err == nil {
			dummyHash = string(hashed)
		}
	})
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plain))
	return false
}

func isHash(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}

// NormalizeUsername trims and NFC-normalises a submitted username. Usernames
// are written in this form.
func NormalizeUsername(username string) string {
	return norm.NFC.String(strings.TrimSpace(username))
}

// UsernameForms returns the trimmed username as typed plus its NFC and NFD
// forms, without duplicates. Rows written before normalisation may hold
// either form.
func UsernameForms(username string) []string {
	trimmed := strings.TrimSpace(username)
	forms := []string{trimmed}
	for _, f := range []string{norm.NFC.String(trimmed), norm.NFD.String(trimmed)} {
		if !slices.Contains(forms, f) {
			forms = append(forms, f)
		}
	}
	return forms
}
