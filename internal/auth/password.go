// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

// Package auth provides password hashing, JWT issuance and validation, and
// the HTTP middleware that guards authenticated routes.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordManager hashes and verifies user passwords with bcrypt.
type PasswordManager struct {
	cost int
}

// NewPasswordManager creates a password manager with the given bcrypt cost.
func NewPasswordManager(cost int) (*PasswordManager, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range %d-%d", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordManager{cost: cost}, nil
}

// Hash returns the bcrypt hash of a password.
func (m *PasswordManager) Hash(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}
	// bcrypt silently truncates beyond 72 bytes; reject instead.
	if len(password) > 72 {
		return "", fmt.Errorf("password must be at most 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the password matches the stored hash. The bcrypt
// comparison is timing-safe.
func (m *PasswordManager) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
