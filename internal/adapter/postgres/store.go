package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"climate-migration-pipeline/internal/adapter/csvstore"
	"climate-migration-pipeline/internal/config"
	"climate-migration-pipeline/internal/observability"
)

const (
	kindNumeric = "double precision"
	kindText    = "text"
)

// Store writes pipeline outputs to the database and answers typed queries
// over them.
type Store struct {
	db        *gorm.DB
	batchSize int
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// Open connects to the configured PostgreSQL database.
func Open(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*Store, error) {
	return OpenWithDialector(pgdriver.Open(cfg.PostgresDSN()), cfg.UploadBatchSize, metrics, logger)
}

// OpenWithDialector connects through an explicit GORM dialector. Tests use
// it with an in-memory SQLite database.
func OpenWithDialector(dial gorm.Dialector, batchSize int, metrics *observability.Metrics, logger *slog.Logger) (*Store, error) {
	if batchSize < 1 {
		batchSize = 1
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db, batchSize: batchSize, metrics: metrics, logger: logger}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ReplaceTableFromCSV drops and recreates a table from one output CSV inside
// a single transaction, so readers never observe a partially loaded table.
// It returns the number of rows inserted.
func (s *Store) ReplaceTableFromCSV(ctx context.Context, table Table, path string) (int, error) {
	t, err := csvstore.ReadTable(path)
	if err != nil {
		s.metrics.UploadErrors.Inc()
		return 0, err
	}
	for _, col := range t.Columns {
		if !validIdentifier(col) {
			s.metrics.UploadErrors.Inc()
			return 0, fmt.Errorf("%s: column %q is not a usable identifier", path, col)
		}
	}
	kinds := columnKinds(t)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %q", string(table))).Error; err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
		defs := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			defs[i] = fmt.Sprintf("%q %s", col, kinds[i])
		}
		create := fmt.Sprintf("CREATE TABLE %q (%s)", string(table), strings.Join(defs, ", "))
		if err := tx.Exec(create).Error; err != nil {
			return fmt.Errorf("create %s: %w", table, err)
		}
		for start := 0; start < len(t.Rows); start += s.batchSize {
			end := min(start+s.batchSize, len(t.Rows))
			if err := insertBatch(tx, table, t.Columns, kinds, t.Rows[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.UploadErrors.Inc()
		return 0, err
	}
	s.metrics.TablesReplaced.Inc()
	s.metrics.RowsUploaded.Add(float64(len(t.Rows)))
	return len(t.Rows), nil
}

// UploadStats summarizes one directory upload.
type UploadStats struct {
	Tables  int
	Rows    int
	Skipped int
	Failed  int
}

// UploadDirectory replaces one table per CSV found under dir, recursively.
// A failed file is logged and skipped so the remaining tables still load;
// the caller inspects Failed to decide whether the run succeeded.
func (s *Store) UploadDirectory(ctx context.Context, dir string) (UploadStats, error) {
	var stats UploadStats
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		table, ok := TableForFile(path)
		if !ok {
			s.logger.Warn("no table mapped for file, skipping", "path", path)
			stats.Skipped++
			return nil
		}
		n, err := s.ReplaceTableFromCSV(ctx, table, path)
		if err != nil {
			s.logger.Error("table upload failed", "table", string(table), "path", path, "error", err)
			stats.Failed++
			return nil
		}
		s.logger.Info("table replaced", "table", string(table), "rows", n)
		stats.Tables++
		stats.Rows += n
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("walk %s: %w", dir, err)
	}
	return stats, nil
}

func insertBatch(tx *gorm.DB, table Table, columns, kinds []string, rows [][]string) error {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"

	groups := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		groups[i] = placeholders
		for j, cell := range row {
			args = append(args, cellValue(cell, kinds[j]))
		}
	}
	stmt := fmt.Sprintf("INSERT INTO %q (%s) VALUES %s",
		string(table), strings.Join(quoted, ", "), strings.Join(groups, ", "))
	if err := tx.Exec(stmt, args...).Error; err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// forcedTextColumns are identity codes that would lose leading zeros as
// numbers.
var forcedTextColumns = map[string]bool{
	"county_fips": true,
	"state_fips":  true,
	"state":       true,
	"county":      true,
}

// columnKinds infers a column type per CSV column: double precision when
// every populated cell parses as a number, text otherwise. Empty cells carry
// no type information and load as NULL either way.
func columnKinds(t *csvstore.Table) []string {
	kinds := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		if forcedTextColumns[col] {
			kinds[i] = kindText
			continue
		}
		kind := kindNumeric
		for _, row := range t.Rows {
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				kind = kindText
				break
			}
		}
		kinds[i] = kind
	}
	return kinds
}

func cellValue(cell, kind string) any {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	if kind == kindNumeric {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil
		}
		return v
	}
	return cell
}

func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
