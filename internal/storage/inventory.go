// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/larder-app/larder/internal/config"
	"github.com/larder-app/larder/internal/metrics"
	"github.com/larder-app/larder/internal/models"
)

// ErrNotFound is returned when a food record does not exist or belongs
// to a different user.
var ErrNotFound = errors.New("food record not found")

const foodsSchema = `
CREATE TABLE IF NOT EXISTS foods (
    id                       VARCHAR PRIMARY KEY,
    user_id                  VARCHAR NOT NULL,
    display_name             VARCHAR,
    item_name                VARCHAR NOT NULL,
    category                 VARCHAR NOT NULL,
    storage_type             VARCHAR NOT NULL,
    quantity                 DOUBLE DEFAULT 0,
    purchase_date            VARCHAR NOT NULL,
    printed_expiry_date      VARCHAR,
    used_before_expiry       BOOLEAN DEFAULT FALSE,
    baseline_expiry_date     VARCHAR,
    personalized_expiry_date VARCHAR,
    final_expiry_date        VARCHAR,
    baseline_days            DOUBLE DEFAULT 0,
    personalized_days        DOUBLE DEFAULT 0,
    base_expiry_days         DOUBLE DEFAULT 0,
    priority_score           DOUBLE DEFAULT 0,
    days_left_at_save        INTEGER DEFAULT 0,
    personalization_enabled  BOOLEAN DEFAULT FALSE,
    printed_cap_applied      BOOLEAN DEFAULT FALSE,
    last_predicted_at        TIMESTAMP,
    feedback_status          VARCHAR,
    feedback_actual_days     DOUBLE,
    prediction_history       VARCHAR DEFAULT '[]',
    created_at               TIMESTAMP NOT NULL,
    updated_at               TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_foods_user ON foods(user_id);
`

// foodColumns is the select list matching scanFood's scan order.
const foodColumns = `id, user_id, display_name, item_name, category, storage_type,
    quantity, purchase_date, printed_expiry_date, used_before_expiry,
    baseline_expiry_date, personalized_expiry_date, final_expiry_date,
    baseline_days, personalized_days, base_expiry_days, priority_score,
    days_left_at_save, personalization_enabled, printed_cap_applied,
    last_predicted_at, feedback_status, feedback_actual_days,
    prediction_history, created_at, updated_at`

// Inventory is the DuckDB-backed food record store.
type Inventory struct {
	conn *sql.DB
}

// NewInventory opens (or creates) the DuckDB inventory database and
// initializes the schema.
func NewInventory(cfg *config.DatabaseConfig) (*Inventory, error) {
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dbDir, err)
			}
		}
	}

	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "512MB"
	}

	// Auto-install/auto-load stay off so startup cannot hang on network
	// fetches in restricted environments.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// DuckDB is embedded; a small pool avoids write contention.
	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)

	if _, err := conn.Exec(foodsSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Inventory{conn: conn}, nil
}

// Close closes the underlying connection pool.
func (inv *Inventory) Close() error {
	return inv.conn.Close()
}

// Ping verifies the database connection.
func (inv *Inventory) Ping(ctx context.Context) error {
	return inv.conn.PingContext(ctx)
}

// Insert stores a new food record. CreatedAt/UpdatedAt are set here.
func (inv *Inventory) Insert(ctx context.Context, f *models.Food) error {
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	history, err := json.Marshal(f.PredictionHistory)
	if err != nil {
		return fmt.Errorf("marshal prediction history: %w", err)
	}

	start := time.Now()
	_, err = inv.conn.ExecContext(ctx, `
		INSERT INTO foods (
			id, user_id, display_name, item_name, category, storage_type,
			quantity, purchase_date, printed_expiry_date, used_before_expiry,
			prediction_history, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID.String(), f.UserID, f.DisplayName, f.ItemName, f.Category,
		f.StorageType, f.Quantity, f.PurchaseDate,
		nullString(f.PrintedExpiryDate), f.UsedBeforeExpiry,
		string(history), f.CreatedAt, f.UpdatedAt,
	)
	metrics.RecordDBQuery("insert", "foods", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert food: %w", err)
	}
	return nil
}

// GetByID fetches one record scoped to the owning user.
func (inv *Inventory) GetByID(ctx context.Context, userID, id string) (*models.Food, error) {
	start := time.Now()
	row := inv.conn.QueryRowContext(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE id = ? AND user_id = ?`, id, userID)

	f, err := scanFood(row)
	metrics.RecordDBQuery("select", "foods", time.Since(start), ignoreNotFound(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get food: %w", err)
	}
	return f, nil
}

// ListByUser returns all of a user's food records, newest first.
func (inv *Inventory) ListByUser(ctx context.Context, userID string) ([]*models.Food, error) {
	start := time.Now()
	rows, err := inv.conn.QueryContext(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE user_id = ? ORDER BY created_at DESC`, userID)
	metrics.RecordDBQuery("select", "foods", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectFoods(rows)
}

// ListAll returns every food record in the store. Used by the expiry
// sweeper to refresh live scores.
func (inv *Inventory) ListAll(ctx context.Context) ([]*models.Food, error) {
	start := time.Now()
	rows, err := inv.conn.QueryContext(ctx,
		`SELECT `+foodColumns+` FROM foods ORDER BY user_id, created_at DESC`)
	metrics.RecordDBQuery("select", "foods", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("list all foods: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectFoods(rows)
}

// UpdateDetails overwrites the client-editable fields of a record.
func (inv *Inventory) UpdateDetails(ctx context.Context, f *models.Food) error {
	start := time.Now()
	res, err := inv.conn.ExecContext(ctx, `
		UPDATE foods SET
			display_name = ?, item_name = ?, category = ?, storage_type = ?,
			quantity = ?, purchase_date = ?, printed_expiry_date = ?,
			used_before_expiry = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		f.DisplayName, f.ItemName, f.Category, f.StorageType,
		f.Quantity, f.PurchaseDate, nullString(f.PrintedExpiryDate),
		f.UsedBeforeExpiry, time.Now().UTC(),
		f.ID.String(), f.UserID,
	)
	metrics.RecordDBQuery("update", "foods", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("update food: %w", err)
	}
	return requireRow(res)
}

// SavePrediction stores the latest prediction outcome and appends the
// snapshot to the record's history, trimming to historyLimit entries.
func (inv *Inventory) SavePrediction(ctx context.Context, userID, id string, f *models.Food, snap models.PredictionSnapshot, historyLimit int) error {
	existing, err := inv.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	history := append(existing.PredictionHistory, snap)
	if historyLimit > 0 && len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	encoded, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal prediction history: %w", err)
	}

	start := time.Now()
	res, err := inv.conn.ExecContext(ctx, `
		UPDATE foods SET
			baseline_expiry_date = ?, personalized_expiry_date = ?,
			final_expiry_date = ?, baseline_days = ?, personalized_days = ?,
			base_expiry_days = ?, priority_score = ?, days_left_at_save = ?,
			personalization_enabled = ?, printed_cap_applied = ?,
			printed_expiry_date = ?, last_predicted_at = ?,
			prediction_history = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		nullString(f.BaselineExpiryDate), nullString(f.PersonalizedExpiryDate),
		nullString(f.FinalExpiryDate), f.BaselineDays, f.PersonalizedDays,
		f.BaseExpiryDays, f.PriorityScore, f.DaysLeftAtSave,
		f.PersonalizationEnabled, f.PrintedCapApplied,
		nullString(f.PrintedExpiryDate), time.Now().UTC(),
		string(encoded), time.Now().UTC(),
		id, userID,
	)
	metrics.RecordDBQuery("update", "foods", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("save prediction: %w", err)
	}
	return requireRow(res)
}

// SetFeedback records the latest feedback outcome on a food record.
func (inv *Inventory) SetFeedback(ctx context.Context, userID, id, status string, actualDays float64) error {
	start := time.Now()
	res, err := inv.conn.ExecContext(ctx, `
		UPDATE foods SET feedback_status = ?, feedback_actual_days = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		status, actualDays, time.Now().UTC(), id, userID,
	)
	metrics.RecordDBQuery("update", "foods", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("set feedback: %w", err)
	}
	return requireRow(res)
}

// RefreshLiveScore persists a recomputed days-left and priority. Used by
// the sweeper so stored scores never go stale between predictions.
func (inv *Inventory) RefreshLiveScore(ctx context.Context, id string, daysLeft int, priority float64) error {
	start := time.Now()
	_, err := inv.conn.ExecContext(ctx, `
		UPDATE foods SET days_left_at_save = ?, priority_score = ?, updated_at = ?
		WHERE id = ?`,
		daysLeft, priority, time.Now().UTC(), id,
	)
	metrics.RecordDBQuery("update", "foods", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("refresh live score: %w", err)
	}
	return nil
}

// Delete removes a record scoped to the owning user.
func (inv *Inventory) Delete(ctx context.Context, userID, id string) error {
	start := time.Now()
	res, err := inv.conn.ExecContext(ctx,
		`DELETE FROM foods WHERE id = ? AND user_id = ?`, id, userID)
	metrics.RecordDBQuery("delete", "foods", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("delete food: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFood(row rowScanner) (*models.Food, error) {
	var (
		f                  models.Food
		idStr              string
		displayName        sql.NullString
		printedExpiry      sql.NullString
		baselineExpiry     sql.NullString
		personalizedExpiry sql.NullString
		finalExpiry        sql.NullString
		lastPredictedAt    sql.NullTime
		feedbackStatus     sql.NullString
		feedbackDays       sql.NullFloat64
		history            string
	)

	err := row.Scan(
		&idStr, &f.UserID, &displayName, &f.ItemName, &f.Category,
		&f.StorageType, &f.Quantity, &f.PurchaseDate, &printedExpiry,
		&f.UsedBeforeExpiry, &baselineExpiry, &personalizedExpiry,
		&finalExpiry, &f.BaselineDays, &f.PersonalizedDays,
		&f.BaseExpiryDays, &f.PriorityScore, &f.DaysLeftAtSave,
		&f.PersonalizationEnabled, &f.PrintedCapApplied, &lastPredictedAt,
		&feedbackStatus, &feedbackDays, &history, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse food id %q: %w", idStr, err)
	}
	f.ID = id

	f.DisplayName = displayName.String
	f.PrintedExpiryDate = printedExpiry.String
	f.BaselineExpiryDate = baselineExpiry.String
	f.PersonalizedExpiryDate = personalizedExpiry.String
	f.FinalExpiryDate = finalExpiry.String
	if lastPredictedAt.Valid {
		t := lastPredictedAt.Time
		f.LastPredictedAt = &t
	}
	if feedbackStatus.Valid {
		f.Feedback = &models.FoodFeedback{
			Status:     feedbackStatus.String,
			ActualDays: feedbackDays.Float64,
		}
	}

	if history != "" {
		if err := json.Unmarshal([]byte(history), &f.PredictionHistory); err != nil {
			return nil, fmt.Errorf("unmarshal prediction history: %w", err)
		}
	}

	return &f, nil
}

func collectFoods(rows *sql.Rows) ([]*models.Food, error) {
	var foods []*models.Food
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		foods = append(foods, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foods: %w", err)
	}
	return foods, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// sql.ErrNoRows is an expected outcome, not a query error, so it stays
// out of the error counter.
func ignoreNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
