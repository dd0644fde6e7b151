package sequence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"framepress/internal/imaging"
)

const cropSettingKey = "crop_margins"

// SetSetting stores a raw settings value under key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithRetry(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now); err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// Setting returns the value stored under key, or ok=false when absent.
func (s *Store) Setting(ctx context.Context, key string) (string, bool, error) {
	ctx = ensureContext(ctx)
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %q: %w", key, err)
	}
	return value, true, nil
}

// DeleteSetting removes the value stored under key.
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	ctx = ensureContext(ctx)
	if err := s.execWithRetry(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}

// SetCropMargins persists the uniform composition-time crop.
func (s *Store) SetCropMargins(ctx context.Context, margins imaging.Margins) error {
	payload, err := json.Marshal(margins)
	if err != nil {
		return fmt.Errorf("marshal crop margins: %w", err)
	}
	return s.SetSetting(ctx, cropSettingKey, string(payload))
}

// CropMargins returns the persisted composition-time crop, or ok=false when
// none is set.
func (s *Store) CropMargins(ctx context.Context) (imaging.Margins, bool, error) {
	value, ok, err := s.Setting(ctx, cropSettingKey)
	if err != nil || !ok {
		return imaging.Margins{}, false, err
	}
	var margins imaging.Margins
	if err := json.Unmarshal([]byte(value), &margins); err != nil {
		return imaging.Margins{}, false, fmt.Errorf("unmarshal crop margins: %w", err)
	}
	return margins, true, nil
}

// ClearCropMargins removes the persisted crop.
func (s *Store) ClearCropMargins(ctx context.Context) error {
	return s.DeleteSetting(ctx, cropSettingKey)
}
