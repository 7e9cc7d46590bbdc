package pgsql

import (
	"context"
	"fmt"

	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxCategoryRuleRepository implements
// repositories.CategoryRuleRepositoryFacade using pgxpool.
type PgxCategoryRuleRepository struct {
	BaseRepository
}

// NewPgxCategoryRuleRepository creates a new PgxCategoryRuleRepository.
func NewPgxCategoryRuleRepository(db *pgxpool.Pool) *PgxCategoryRuleRepository {
	return &PgxCategoryRuleRepository{BaseRepository: BaseRepository{Pool: db}}
}

// ListRules returns the user's keyword rules. Deliberately no ORDER BY:
// rules carry no priority and first-match behavior is unordered.
func (r *PgxCategoryRuleRepository) ListRules(ctx context.Context, userID string) ([]models.CategoryKeywordRule, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT rule_id, user_id, keyword, category_id, created_at, last_updated_at
		FROM category_keyword_rules
		WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query keyword rules: %w", err)
	}
	defer rows.Close()

	var rules []models.CategoryKeywordRule
	for rows.Next() {
		var rule models.CategoryKeywordRule
		err := rows.Scan(&rule.RuleID, &rule.UserID, &rule.Keyword, &rule.CategoryID,
			&rule.CreatedAt, &rule.LastUpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan keyword rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
