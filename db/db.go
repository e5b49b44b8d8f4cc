package db

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"smarttender/models"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// wrap maps sql.ErrNoRows to the NotFound sentinel and everything else to
// a StorageError so callers can distinguish the two without importing
// database/sql.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return &models.StorageError{Op: op, Err: err}
}
