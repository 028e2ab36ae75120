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
	"github.com/bookbrain/bookbrain/internal/recommend"
)

const userBookColumns = `id, user_id, book_id, title, authors, categories,
	description, thumbnail, catalog_score, rating, status, created_at, updated_at`

// AddBook inserts a library entry for the user. Returns ErrDuplicate when
// the book is already in the library.
func (db *DB) AddBook(ctx context.Context, book *models.UserBook) error {
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	if book.Status == "" {
		book.Status = recommend.StatusWantToRead
	}
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_books (id, user_id, book_id, title, authors, categories,
			description, thumbnail, catalog_score, rating, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID, book.UserID, book.BookID, book.Title, book.Authors, book.Categories,
		book.Description, book.Thumbnail, book.CatalogScore, book.Rating,
		string(book.Status), book.CreatedAt, book.UpdatedAt)
	metrics.DBQueryDuration.WithLabelValues("insert", "user_books").Observe(time.Since(start).Seconds())
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		metrics.DBQueryErrors.WithLabelValues("insert", "user_books").Inc()
		return fmt.Errorf("failed to add book: %w", err)
	}
	return nil
}

// GetBook fetches one library entry by user and library row ID.
func (db *DB) GetBook(ctx context.Context, userID, id string) (*models.UserBook, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userBookColumns+` FROM user_books WHERE user_id = ? AND id = ?`,
		userID, id)
	book, err := scanUserBook(row)
	metrics.DBQueryDuration.WithLabelValues("select", "user_books").Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		metrics.DBQueryErrors.WithLabelValues("select", "user_books").Inc()
		return nil, fmt.Errorf("failed to query book: %w", err)
	}
	return book, nil
}

// ListBooks returns a page of the user's library ordered by most recently
// updated, plus the total entry count for pagination.
func (db *DB) ListBooks(ctx context.Context, userID string, status recommend.ReadingStatus, limit, offset int) ([]models.UserBook, int64, error) {
	where := `user_id = ?`
	args := []any{userID}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, string(status))
	}

	var total int64
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_books WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userBookColumns+` FROM user_books WHERE `+where+`
		 ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	metrics.DBQueryDuration.WithLabelValues("select", "user_books").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("select", "user_books").Inc()
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]models.UserBook, 0, limit)
	for rows.Next() {
		book, err := scanUserBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate books: %w", err)
	}
	return books, total, nil
}

// ListAllBooks returns the user's entire library, the snapshot fed to the
// recommendation engine.
func (db *DB) ListAllBooks(ctx context.Context, userID string) ([]models.UserBook, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userBookColumns+` FROM user_books WHERE user_id = ? ORDER BY created_at, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []models.UserBook
	for rows.Next() {
		book, err := scanUserBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *book)
	}
	return books, rows.Err()
}

// UpdateBook applies a rating or status change to a library entry.
// Returns ErrNotFound when the entry does not belong to the user.
func (db *DB) UpdateBook(ctx context.Context, userID, id string, req models.UpdateBookRequest) (*models.UserBook, error) {
	set := `updated_at = ?`
	args := []any{time.Now().UTC()}
	if req.Rating != nil {
		set += `, rating = ?`
		args = append(args, *req.Rating)
	}
	if req.Status != nil {
		set += `, status = ?`
		args = append(args, *req.Status)
	}
	args = append(args, userID, id)

	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE user_books SET `+set+` WHERE user_id = ? AND id = ?`, args...)
	metrics.DBQueryDuration.WithLabelValues("update", "user_books").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("update", "user_books").Inc()
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return db.GetBook(ctx, userID, id)
}

// DeleteBook removes a library entry. Returns ErrNotFound when the entry
// does not belong to the user.
func (db *DB) DeleteBook(ctx context.Context, userID, id string) error {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM user_books WHERE user_id = ? AND id = ?`, userID, id)
	metrics.DBQueryDuration.WithLabelValues("delete", "user_books").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("delete", "user_books").Inc()
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// LibraryStats aggregates the user's library in a single query.
func (db *DB) LibraryStats(ctx context.Context, userID string) (*models.LibraryStats, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (status = 'finished'),
			COUNT(*) FILTER (status = 'reading'),
			COUNT(*) FILTER (status = 'want_to_read'),
			COUNT(*) FILTER (rating > 0),
			COALESCE(AVG(rating) FILTER (rating > 0), 0)
		 FROM user_books WHERE user_id = ?`, userID)

	var stats models.LibraryStats
	err := row.Scan(&stats.Total, &stats.Finished, &stats.Reading,
		&stats.WantToRead, &stats.Rated, &stats.AvgRating)
	metrics.DBQueryDuration.WithLabelValues("select", "user_books").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("select", "user_books").Inc()
		return nil, fmt.Errorf("failed to aggregate library stats: %w", err)
	}
	return &stats, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserBook(row rowScanner) (*models.UserBook, error) {
	var book models.UserBook
	var status string
	err := row.Scan(&book.ID, &book.UserID, &book.BookID, &book.Title,
		&book.Authors, &book.Categories, &book.Description, &book.Thumbnail,
		&book.CatalogScore, &book.Rating, &status, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return nil, err
	}
	book.Status = recommend.ReadingStatus(status)
	return &book, nil
}
