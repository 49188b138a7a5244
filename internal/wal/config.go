// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package wal

import (
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const mib = 1 << 20

// Config controls the interaction WAL. Rules in the validate tags only apply
// when Enabled is set; OpenForTesting skips them so tests can run with
// millisecond intervals.
type Config struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path" validate:"required"`
	SyncWrites bool   `koanf:"sync_writes"`

	// Pending entries younger than RetryInterval are left to the request
	// path. After MaxRetries failed publishes an entry is dropped.
	RetryInterval time.Duration `koanf:"retry_interval" validate:"min=1s"`
	MaxRetries    int           `koanf:"max_retries" validate:"min=1"`
	RetryBackoff  time.Duration `koanf:"retry_backoff" validate:"min=1s"`

	// Confirmed entries are deleted every CompactInterval; unconfirmed
	// entries expire after EntryTTL.
	CompactInterval time.Duration `koanf:"compact_interval" validate:"min=1m"`
	EntryTTL        time.Duration `koanf:"entry_ttl" validate:"min=1h"`

	// Badger tuning.
	MemTableSize     int64   `koanf:"memtable_size" validate:"min=1048576"`
	ValueLogFileSize int64   `koanf:"vlog_size" validate:"min=1048576"`
	NumCompactors    int     `koanf:"num_compactors" validate:"min=2"`
	Compression      bool    `koanf:"compression"`
	GCRatio          float64 `koanf:"gc_ratio" validate:"gt=0,lt=1"`

	CloseTimeout time.Duration `koanf:"close_timeout" validate:"gt=0"`
}

// DefaultConfig favours durability: synchronous writes, a week of retention
// for unconfirmed interactions.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		Path:             "data/wal",
		SyncWrites:       true,
		RetryInterval:    30 * time.Second,
		MaxRetries:       100,
		RetryBackoff:     5 * time.Second,
		CompactInterval:  time.Hour,
		EntryTTL:         7 * 24 * time.Hour,
		MemTableSize:     16 * mib,
		ValueLogFileSize: 64 * mib,
		NumCompactors:    2,
		Compression:      true,
		GCRatio:          0.5,
		CloseTimeout:     30 * time.Second,
	}
}

// withDefaults fills the Badger settings a hand-built Config leaves zero.
func (c *Config) withDefaults() {
	if c.NumCompactors < 2 {
		c.NumCompactors = 2
	}
	if c.GCRatio == 0 {
		c.GCRatio = 0.5
	}
	if c.CloseTimeout == 0 {
		c.CloseTimeout = 30 * time.Second
	}
	if c.MemTableSize == 0 {
		c.MemTableSize = mib
	}
	if c.ValueLogFileSize == 0 {
		c.ValueLogFileSize = mib
	}
}

var (
	configValidator     *validator.Validate
	configValidatorOnce sync.Once
)

// Validate reports the first rule the configuration breaks as a *ConfigError.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	configValidatorOnce.Do(func() {
		configValidator = validator.New()
	})

	err := configValidator.Struct(c)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fe := fieldErrs[0]
	msg := fe.Tag()
	if fe.Param() != "" {
		msg += " " + fe.Param()
	}
	return &ConfigError{Field: fe.Field(), Message: "must satisfy " + msg}
}

// ConfigError names the WAL setting that failed validation.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "WAL config error: " + e.Field + ": " + e.Message
}
