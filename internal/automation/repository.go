package automation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// Repository defines the interface for rule persistence.
// This abstraction allows different implementations and enables
// unit testing without database dependencies.
type Repository interface {
	CreateRule(ctx context.Context, rule *Rule) error
	GetRule(ctx context.Context, id int64) (*Rule, error)
	ListRulesByHome(ctx context.Context, homeID int64) ([]Rule, error)

	// DeleteRule removes a rule. Returns ErrRuleNotFound when nothing was deleted.
	DeleteRule(ctx context.Context, id int64) error
}

// ruleColumns is the SELECT column list for rule queries.
const ruleColumns = `id, home_id, condition, action`

// SQLRepository implements Repository on either supported engine.
type SQLRepository struct {
	db *database.DB
}

// NewSQLRepository creates a new rule repository backed by db.
func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// CreateRule inserts a rule and fills in its ID.
// An unknown home surfaces as database.ErrConstraintViolation.
func (r *SQLRepository) CreateRule(ctx context.Context, rule *Rule) error {
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		return tx.QueryRowContext(ctx,
			`INSERT INTO rules (home_id, condition, action) VALUES (?, ?, ?) RETURNING id`,
			rule.HomeID, rule.Condition, rule.Action,
		).Scan(&rule.ID)
	})
	if err != nil {
		return fmt.Errorf("inserting rule: %w", err)
	}
	return nil
}

// GetRule retrieves a rule by its ID.
func (r *SQLRepository) GetRule(ctx context.Context, id int64) (*Rule, error) {
	var rule Rule
	err := r.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM rules WHERE id = ?`, id).
		Scan(&rule.ID, &rule.HomeID, &rule.Condition, &rule.Action)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("querying rule by id: %w", err)
	}
	return &rule, nil
}

// ListRulesByHome returns a home's rules ordered by ID.
func (r *SQLRepository) ListRulesByHome(ctx context.Context, homeID int64) ([]Rule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ruleColumns+` FROM rules WHERE home_id = ? ORDER BY id`, homeID)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	rules := []Rule{}
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(&rule.ID, &rule.HomeID, &rule.Condition, &rule.Action); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}
	return rules, nil
}

// DeleteRule removes a rule by ID.
func (r *SQLRepository) DeleteRule(ctx context.Context, id int64) error {
	var affected int64
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}
	if affected == 0 {
		return ErrRuleNotFound
	}
	return nil
}
