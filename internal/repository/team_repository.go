package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TeamRepository reads maintenance team details.
type TeamRepository struct {
	db *sqlx.DB
}

// NewTeamRepository constructs the repository.
func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// LeaderID returns the team leader, or an empty string when the team has none.
func (r *TeamRepository) LeaderID(ctx context.Context, teamID string) (string, error) {
	const query = `SELECT leader_id FROM maintenance_teams WHERE id = $1`
	var leader sql.NullString
	if err := r.db.GetContext(ctx, &leader, query, teamID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("find team leader: %w", err)
	}
	return leader.String, nil
}
