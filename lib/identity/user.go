// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Privilege is what a user may do on their node's filesystem and
// shell.
type Privilege struct {
	Read  bool `json:"read" yaml:"read"`
	Write bool `json:"write" yaml:"write"`
}

// UserConfig is a user account on one node.
type UserConfig struct {
	Name      string
	Home      string
	Privilege Privilege

	// PasswordHash is a bcrypt hash. Empty disables password login.
	PasswordHash []byte
}

// HashPassword returns a bcrypt hash of password. A cost of zero uses
// bcrypt.DefaultCost.
func HashPassword(password string, cost int) ([]byte, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return hash, nil
}

// ErrBadPassword is returned by CheckPassword when the password does
// not match or the account has no password.
var ErrBadPassword = errors.New("authentication failed")

// CheckPassword verifies password against the user's hash.
func (u UserConfig) CheckPassword(password string) error {
	if len(u.PasswordHash) == 0 {
		return ErrBadPassword
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrBadPassword
		}
		return fmt.Errorf("checking password for %s: %w", u.Name, err)
	}
	return nil
}
