// Package history persists finished comparisons and the category edits users
// make while reviewing them.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

// DefaultListLimit is used when ListComparisons is given a non-positive limit.
const DefaultListLimit = 20

// ErrNotFound is returned for unknown comparison IDs.
var ErrNotFound = errors.New("comparison not found")

// Comparison is a stored comparison. ListComparisons leaves Result and
// Insights nil.
type Comparison struct {
	ID             string                     `json:"id"`
	CreatedAt      time.Time                  `json:"createdAt"`
	Statement1Name string                     `json:"statement1Name"`
	Statement2Name string                     `json:"statement2Name"`
	Statement1Bank string                     `json:"statement1Bank"`
	Statement2Bank string                     `json:"statement2Bank"`
	SpendingChange decimal.Decimal            `json:"spendingChange"`
	IncomeChange   decimal.Decimal            `json:"incomeChange"`
	CategoryCount  int                        `json:"categoryCount"`
	Narrative      string                     `json:"narrative,omitempty"`
	Result         *models.ComparisonResult   `json:"result,omitempty"`
	Insights       *models.ComparisonInsights `json:"insights,omitempty"`
}

// CategoryEdit records a user re-labelling one transaction of a comparison.
type CategoryEdit struct {
	ID           int64     `json:"id"`
	ComparisonID string    `json:"comparisonId"`
	Description  string    `json:"description"`
	OldCategory  string    `json:"oldCategory"`
	NewCategory  string    `json:"newCategory"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Repository is the history surface used by the pipeline and the HTTP API.
type Repository interface {
	SaveComparison(ctx context.Context, c *Comparison) (string, error)
	GetComparison(ctx context.Context, id string) (*Comparison, error)
	ListComparisons(ctx context.Context, limit int) ([]Comparison, error)
	LogCategoryEdit(ctx context.Context, edit CategoryEdit) (CategoryEdit, error)
	ListCategoryEdits(ctx context.Context, comparisonID string) ([]CategoryEdit, error)
}

// SQLiteStore is a Repository backed by a sqlite file.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the database at dbPath and migrates it.
func Open(dbPath string, logger logging.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("history database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), models.PermissionDirectory); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger = logging.OrDefault(logger).WithField(logging.FieldComponent, "history")
	if _, err := RunMigrations(dbPath, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveComparison stores c and returns its ID, generating one when c.ID is
// empty. Summary columns are derived from c.Result and c.Insights.
func (s *SQLiteStore) SaveComparison(ctx context.Context, c *Comparison) (string, error) {
	if c == nil || c.Result == nil {
		return "", fmt.Errorf("comparison result is required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().UTC()
	}
	fillSummary(c)

	resultJSON, err := json.Marshal(c.Result)
	if err != nil {
		return "", fmt.Errorf("marshal comparison result: %w", err)
	}
	var insightsJSON []byte
	if c.Insights != nil {
		if insightsJSON, err = json.Marshal(c.Insights); err != nil {
			return "", fmt.Errorf("marshal insights: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO comparisons (
			id, created_at, statement1_name, statement2_name, statement1_bank, statement2_bank,
			spending_change, income_change, category_count, narrative, result_json, insights_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, formatTime(c.CreatedAt), c.Statement1Name, c.Statement2Name,
		c.Statement1Bank, c.Statement2Bank, c.SpendingChange.String(), c.IncomeChange.String(),
		c.CategoryCount, c.Narrative, string(resultJSON), string(insightsJSON))
	if err != nil {
		return "", fmt.Errorf("insert comparison: %w", err)
	}

	s.logger.Info("Comparison saved",
		logging.F(logging.FieldComparisonID, c.ID),
		logging.F(logging.FieldCount, c.CategoryCount))
	return c.ID, nil
}

// GetComparison loads a full comparison, including result and insights.
func (s *SQLiteStore) GetComparison(ctx context.Context, id string) (*Comparison, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, statement1_name, statement2_name, statement1_bank, statement2_bank,
		       spending_change, income_change, category_count, narrative, result_json, insights_json
		FROM comparisons WHERE id = ?`, id)

	var (
		c                        Comparison
		createdAt, spend, income string
		resultJSON, insightsJSON string
	)
	err := row.Scan(&c.ID, &createdAt, &c.Statement1Name, &c.Statement2Name,
		&c.Statement1Bank, &c.Statement2Bank, &spend, &income, &c.CategoryCount,
		&c.Narrative, &resultJSON, &insightsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query comparison: %w", err)
	}
	if err := decodeSummary(&c, createdAt, spend, income); err != nil {
		return nil, err
	}

	c.Result = &models.ComparisonResult{}
	if err := json.Unmarshal([]byte(resultJSON), c.Result); err != nil {
		return nil, fmt.Errorf("decode comparison result: %w", err)
	}
	if insightsJSON != "" {
		c.Insights = &models.ComparisonInsights{}
		if err := json.Unmarshal([]byte(insightsJSON), c.Insights); err != nil {
			return nil, fmt.Errorf("decode insights: %w", err)
		}
	}
	return &c, nil
}

// ListComparisons returns summaries, newest first.
func (s *SQLiteStore) ListComparisons(ctx context.Context, limit int) ([]Comparison, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, statement1_name, statement2_name, statement1_bank, statement2_bank,
		       spending_change, income_change, category_count, narrative
		FROM comparisons ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query comparisons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Comparison{}
	for rows.Next() {
		var (
			c                        Comparison
			createdAt, spend, income string
		)
		if err := rows.Scan(&c.ID, &createdAt, &c.Statement1Name, &c.Statement2Name,
			&c.Statement1Bank, &c.Statement2Bank, &spend, &income, &c.CategoryCount,
			&c.Narrative); err != nil {
			return nil, fmt.Errorf("scan comparison: %w", err)
		}
		if err := decodeSummary(&c, createdAt, spend, income); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LogCategoryEdit appends an edit to an existing comparison. Edits are a log
// only: stored comparisons are never recomputed from them.
func (s *SQLiteStore) LogCategoryEdit(ctx context.Context, edit CategoryEdit) (CategoryEdit, error) {
	edit.Description = strings.TrimSpace(edit.Description)
	edit.NewCategory = strings.TrimSpace(edit.NewCategory)
	if edit.Description == "" {
		return CategoryEdit{}, fmt.Errorf("edit description is required")
	}
	if edit.NewCategory == "" {
		return CategoryEdit{}, fmt.Errorf("edit new category is required")
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM comparisons WHERE id = ?`, edit.ComparisonID).Scan(&exists)
	if err != nil {
		return CategoryEdit{}, fmt.Errorf("query comparison: %w", err)
	}
	if exists == 0 {
		return CategoryEdit{}, fmt.Errorf("%w: %s", ErrNotFound, edit.ComparisonID)
	}

	if edit.CreatedAt.IsZero() {
		edit.CreatedAt = s.now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO category_edits (comparison_id, description, old_category, new_category, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		edit.ComparisonID, edit.Description, edit.OldCategory, edit.NewCategory, formatTime(edit.CreatedAt))
	if err != nil {
		return CategoryEdit{}, fmt.Errorf("insert category edit: %w", err)
	}
	if edit.ID, err = res.LastInsertId(); err != nil {
		return CategoryEdit{}, fmt.Errorf("read edit id: %w", err)
	}

	s.logger.Info("Category edit logged",
		logging.F(logging.FieldComparisonID, edit.ComparisonID),
		logging.F(logging.FieldDescription, edit.Description),
		logging.F(logging.FieldCategory, edit.NewCategory))
	return edit, nil
}

// ListCategoryEdits returns the edits of a comparison in insertion order.
func (s *SQLiteStore) ListCategoryEdits(ctx context.Context, comparisonID string) ([]CategoryEdit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, comparison_id, description, old_category, new_category, created_at
		FROM category_edits WHERE comparison_id = ? ORDER BY id`, comparisonID)
	if err != nil {
		return nil, fmt.Errorf("query category edits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []CategoryEdit{}
	for rows.Next() {
		var (
			e         CategoryEdit
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.ComparisonID, &e.Description, &e.OldCategory, &e.NewCategory, &createdAt); err != nil {
			return nil, fmt.Errorf("scan category edit: %w", err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func fillSummary(c *Comparison) {
	r := c.Result
	if r.Statement1 != nil && c.Statement1Bank == "" {
		c.Statement1Bank = r.Statement1.Summary.BankName
	}
	if r.Statement2 != nil && c.Statement2Bank == "" {
		c.Statement2Bank = r.Statement2.Summary.BankName
	}
	c.CategoryCount = len(r.Comparison)
	if c.Insights != nil {
		c.SpendingChange = c.Insights.TotalSpendingChange
		c.IncomeChange = c.Insights.TotalIncomeChange
	}
}

func decodeSummary(c *Comparison, createdAt, spend, income string) error {
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return err
	}
	if c.SpendingChange, err = decimal.NewFromString(spend); err != nil {
		return fmt.Errorf("decode spending change: %w", err)
	}
	if c.IncomeChange, err = decimal.NewFromString(income); err != nil {
		return fmt.Errorf("decode income change: %w", err)
	}
	return nil
}

// timeLayout has fixed-width fractions so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode timestamp %q: %w", s, err)
	}
	return t, nil
}
