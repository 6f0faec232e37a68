// Package store provides persistence for the song catalog backed by Postgres.
package store

import (
	"database/sql"
	"errors"
)

var (
	// ErrAuthorNameRequired signals a new-author entry without a name; it
	// aborts the surrounding transaction.
	ErrAuthorNameRequired = errors.New("new author missing name")
	// ErrSongNotFound signals a missing song record.
	ErrSongNotFound = errors.New("song not found")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}
