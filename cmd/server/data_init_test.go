// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package main

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/saveeat/internal/config"
	"github.com/tomtom215/saveeat/internal/database"
)

type fakeImporter struct {
	count    int64
	countErr error
	imports  int
}

func (f *fakeImporter) RecipeCount(context.Context) (int64, error) {
	return f.count, f.countErr
}

func (f *fakeImporter) ImportFoodCom(context.Context, string, string) (*database.ImportResult, error) {
	f.imports++
	return &database.ImportResult{}, nil
}

func TestImportIfEmpty(t *testing.T) {
	t.Parallel()

	both := config.DatabaseConfig{ImportRecipesCSV: "recipes.csv", ImportReviewsCSV: "reviews.csv"}
	countErr := errors.New("db offline")

	tests := []struct {
		name        string
		cfg         config.DatabaseConfig
		db          *fakeImporter
		wantImports int
		wantErr     error
	}{
		{"paths unset", config.DatabaseConfig{}, &fakeImporter{}, 0, nil},
		{"only recipes path", config.DatabaseConfig{ImportRecipesCSV: "recipes.csv"}, &fakeImporter{}, 0, nil},
		{"empty store", both, &fakeImporter{}, 1, nil},
		{"populated store", both, &fakeImporter{count: 42}, 0, nil},
		{"count failure", both, &fakeImporter{countErr: countErr}, 0, countErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := importIfEmpty(context.Background(), tt.db, &tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("importIfEmpty() err = %v, want %v", err, tt.wantErr)
			}
			if tt.db.imports != tt.wantImports {
				t.Errorf("imports = %d, want %d", tt.db.imports, tt.wantImports)
			}
		})
	}
}
