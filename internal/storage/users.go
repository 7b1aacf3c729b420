// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const userKeyPrefix = "user:"

var (
	// ErrUserExists is returned when registering an already-taken username.
	ErrUserExists = errors.New("username already taken")

	// ErrUserNotFound is returned for unknown usernames.
	ErrUserNotFound = errors.New("user not found")
)

// User is a stored account. PasswordHash holds the bcrypt hash, never
// the plaintext password.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Users is the BadgerDB-backed account store.
type Users struct {
	db *badger.DB
}

// NewUsers creates a user store on an open Badger instance.
func NewUsers(db *badger.DB) *Users {
	return &Users{db: db}
}

// Create stores a new user. The existence check and the write share one
// transaction, so duplicate registrations cannot race.
func (s *Users) Create(ctx context.Context, user *User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(userKeyPrefix + user.Username)

		_, err := txn.Get(key)
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check username: %w", err)
		}

		return txn.Set(key, data)
	})
}

// GetByUsername loads a user by username.
func (s *Users) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKeyPrefix + username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
