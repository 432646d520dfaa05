package session

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"gitlab.com/swifttrack/driver-app/internal/model"
)

// DriverAccounts looks up driver accounts for authentication. Backed by the
// dispatch database in production.
type DriverAccounts interface {
	GetByUsername(ctx context.Context, username string) (*model.Driver, string, error)
}

// RepoAuthenticator checks credentials against stored bcrypt hashes.
type RepoAuthenticator struct {
	accounts DriverAccounts
}

func NewRepoAuthenticator(accounts DriverAccounts) *RepoAuthenticator {
	return &RepoAuthenticator{accounts: accounts}
}

func (a *RepoAuthenticator) Login(ctx context.Context, creds Credentials) (*model.Driver, error) {
	driver, hash, err := a.accounts.GetByUsername(ctx, creds.Username)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(creds.Password)); err != nil {
		return nil, ErrUnauthorized
	}
	return driver, nil
}

// StaticAuthenticator holds one fixture account. Used for seeded local runs
// and tests; the password is hashed at construction so the compare path
// matches production.
type StaticAuthenticator struct {
	username string
	hash     []byte
	driver   *model.Driver
}

func NewStaticAuthenticator(driver *model.Driver, username, password string) (*StaticAuthenticator, error) {
	if driver == nil {
		return nil, errors.New("static authenticator needs a driver profile")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash fixture password: %w", err)
	}
	return &StaticAuthenticator{username: username, hash: hash, driver: driver}, nil
}

func (a *StaticAuthenticator) Login(_ context.Context, creds Credentials) (*model.Driver, error) {
	if creds.Username != a.username {
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(creds.Password)); err != nil {
		return nil, ErrUnauthorized
	}
	return a.driver.Clone(), nil
}
