// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestUsers_CreateAndGet(t *testing.T) {
	s := NewUsers(openTestBadger(t))
	ctx := context.Background()

	user := &User{
		ID:           uuid.New(),
		Username:     "alice",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := s.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ID = %s, want %s", got.ID, user.ID)
	}
	if got.PasswordHash != user.PasswordHash {
		t.Error("password hash did not round trip")
	}
}

func TestUsers_CreateDuplicate(t *testing.T) {
	s := NewUsers(openTestBadger(t))
	ctx := context.Background()

	first := &User{ID: uuid.New(), Username: "bob"}
	if err := s.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second := &User{ID: uuid.New(), Username: "bob"}
	if err := s.Create(ctx, second); !errors.Is(err, ErrUserExists) {
		t.Errorf("Create(duplicate) error = %v, want ErrUserExists", err)
	}

	// Original record must survive the failed registration.
	got, err := s.GetByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("ID = %s, want original %s", got.ID, first.ID)
	}
}

func TestUsers_GetUnknown(t *testing.T) {
	s := NewUsers(openTestBadger(t))

	_, err := s.GetByUsername(context.Background(), "nobody")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByUsername(unknown) error = %v, want ErrUserNotFound", err)
	}
}
