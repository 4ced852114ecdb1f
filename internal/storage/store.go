// Package storage defines the key-value contract the order, user and cart
// repositories are written against, plus an in-memory implementation.
//
// Every entry carries a version that increases on each write. Writers that
// read-modify-write a record pass the version they read to CompareAndSwap and
// get ErrVersionConflict if somebody else wrote in between.
package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("key not found")
	ErrKeyExists       = errors.New("key already exists")
	ErrVersionConflict = errors.New("version conflict")
)

type Entry struct {
	Key     string
	Value   []byte
	Version int64
}

type Store interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (*Entry, error)
	// Set writes value unconditionally and returns the new version.
	Set(ctx context.Context, key string, value []byte) (int64, error)
	// Create writes value only if key is absent, otherwise ErrKeyExists.
	Create(ctx context.Context, key string, value []byte) (int64, error)
	// CompareAndSwap writes value only if the stored version equals version.
	CompareAndSwap(ctx context.Context, key string, value []byte, version int64) (int64, error)
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// List returns all entries whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Entry, error)
}
