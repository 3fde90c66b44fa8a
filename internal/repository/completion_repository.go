package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/reading-practice/internal/model"
)

// CompletionRepo tracks per-profile reading progress. One row per
// (user_id, exercise_id); re-tracking overwrites the previous metrics.
type CompletionRepo struct{ DB *sql.DB }

func NewCompletionRepo(db *sql.DB) *CompletionRepo { return &CompletionRepo{DB: db} }

// Upsert stores the latest metrics for the pair as a single atomic write.
func (r *CompletionRepo) Upsert(ctx context.Context, c model.Completion) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO completions (user_id, exercise_id, completion, time_spent, position)
		 VALUES (?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE completion=VALUES(completion), time_spent=VALUES(time_spent), position=VALUES(position)`,
		c.UserID, c.ExerciseID, c.Completion, c.TimeSpent, c.Position)
	return err
}

// Get fetches progress for one pair; sql.ErrNoRows when never tracked.
func (r *CompletionRepo) Get(ctx context.Context, userID, exerciseID uint64) (model.Completion, error) {
	var c model.Completion
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, exercise_id, completion, time_spent, position FROM completions WHERE user_id=? AND exercise_id=? LIMIT 1",
		userID, exerciseID).Scan(&c.UserID, &c.ExerciseID, &c.Completion, &c.TimeSpent, &c.Position)
	return c, err
}

// MapForUser returns the profile's progress keyed by exercise id, for
// joining onto a listing page in one round trip.
func (r *CompletionRepo) MapForUser(ctx context.Context, userID uint64, exerciseIDs []uint64) (map[uint64]model.Completion, error) {
	out := map[uint64]model.Completion{}
	if len(exerciseIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, 0, len(exerciseIDs))
	args := []any{userID}
	for _, id := range exerciseIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT user_id, exercise_id, completion, time_spent, position FROM completions WHERE user_id=? AND exercise_id IN ("+
			strings.Join(placeholders, ",")+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c model.Completion
		if err := rows.Scan(&c.UserID, &c.ExerciseID, &c.Completion, &c.TimeSpent, &c.Position); err != nil {
			return nil, err
		}
		out[c.ExerciseID] = c
	}
	return out, rows.Err()
}
