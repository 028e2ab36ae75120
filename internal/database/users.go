// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookbrain/bookbrain/internal/metrics"
	"github.com/bookbrain/bookbrain/internal/models"
)

// CreateUser inserts a new user and returns it with the generated ID.
// Returns ErrDuplicate when the username or email is already taken.
func (db *DB) CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	metrics.DBQueryDuration.WithLabelValues("insert", "users").Observe(time.Since(start).Seconds())
	if err != nil {
		if isConstraintViolation(err) {
			return nil, ErrDuplicate
		}
		metrics.DBQueryErrors.WithLabelValues("insert", "users").Inc()
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUserByUsername fetches a user by username. Returns ErrNotFound when no
// such user exists.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.getUser(ctx, "username = ?", username)
}

// GetUserByID fetches a user by ID. Returns ErrNotFound when no such user
// exists.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return db.getUser(ctx, "id = ?", id)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE `+where, arg)

	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	metrics.DBQueryDuration.WithLabelValues("select", "users").Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		metrics.DBQueryErrors.WithLabelValues("select", "users").Inc()
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}
