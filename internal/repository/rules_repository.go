package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kasicredit/lending-engine/internal/domain"
)

type rulesRepository struct {
	db *sqlx.DB
}

func NewRulesRepository(db *sqlx.DB) RulesRepository {
	return &rulesRepository{db: db}
}

func (r *rulesRepository) GetActive(ctx context.Context) (*domain.LendingRules, error) {
	query := `
		SELECT document
		FROM lending_rules
		WHERE active = true
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var document []byte
	if err := r.db.GetContext(ctx, &document, query); err != nil {
		return nil, err
	}

	var rules domain.LendingRules
	if err := json.Unmarshal(document, &rules); err != nil {
		return nil, err
	}

	return &rules, nil
}

func (r *rulesRepository) Save(ctx context.Context, rules *domain.LendingRules) error {
	document, err := json.Marshal(rules)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `UPDATE lending_rules SET active = false WHERE active = true`); err != nil {
		return err
	}

	query := `
		INSERT INTO lending_rules (document, active, updated_at)
		VALUES ($1, true, $2)
	`
	if _, err = tx.ExecContext(ctx, query, document, time.Now()); err != nil {
		return err
	}

	return tx.Commit()
}
