// Package credential keeps MMC passwords in the operating system keyring so
// they do not have to live in mmc.toml or shell history.
package credential

import (
	"errors"

	"github.com/rotisserie/eris"
	"github.com/zalando/go-keyring"
)

const Service = "mmc-deploy"

var (
	ErrNoUsername = eris.New("username is required")
	ErrNoPassword = eris.New("password is required")
)

// Store is the subset of keyring behaviour the CLI needs.
type Store interface {
	Get(username string) (string, bool, error)
	Set(username, password string) error
	Delete(username string) error
}

var _ Store = (*Keyring)(nil)

// Keyring stores credentials under a single keyring service.
type Keyring struct {
	service string
}

func NewKeyring() *Keyring {
	return &Keyring{service: Service}
}

// Get returns the stored password. A missing entry is reported with
// found=false rather than an error.
func (k *Keyring) Get(username string) (string, bool, error) {
	if username == "" {
		return "", false, ErrNoUsername
	}
	password, err := keyring.Get(k.service, username)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrap(err, "failed to read password from keyring")
	}
	return password, true, nil
}

func (k *Keyring) Set(username, password string) error {
	if username == "" {
		return ErrNoUsername
	}
	if password == "" {
		return ErrNoPassword
	}
	if err := keyring.Set(k.service, username, password); err != nil {
		return eris.Wrap(err, "failed to save password to keyring")
	}
	return nil
}

// Delete removes the stored password. Deleting a missing entry succeeds.
func (k *Keyring) Delete(username string) error {
	if username == "" {
		return ErrNoUsername
	}
	err := keyring.Delete(k.service, username)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return eris.Wrap(err, "failed to delete password from keyring")
	}
	return nil
}
