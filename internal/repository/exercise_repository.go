package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/reading-practice/internal/model"
)

// ExerciseRepo persists reading texts and their category links.
type ExerciseRepo struct{ DB *sql.DB }

func NewExerciseRepo(db *sql.DB) *ExerciseRepo { return &ExerciseRepo{DB: db} }

// ExerciseListParams narrows and orders a listing query. Zero values mean
// "no filter". OrderBy must be validated by the caller against
// ExerciseOrderColumns before building a query.
type ExerciseListParams struct {
	Skip       int
	Limit      int
	OrderBy    string // "title" | "complexity" | "category"
	Descending bool
	Complexity model.Complexity
	Category   string
	TitleLike  string
}

// ExerciseOrderColumns is the closed set of accepted order_by values.
var ExerciseOrderColumns = map[string]bool{
	"title":      true,
	"complexity": true,
	"category":   true,
}

// orderExpr maps an order_by value to its SQL ordering expression.
// Complexity sorts by grade ordinal, not alphabetically; category sorts
// by the alphabetically first attached category name.
var orderExpr = map[string]string{
	"title":      "e.title",
	"complexity": "FIELD(e.complexity,'easy','medium','hard')",
	"category":   "(SELECT MIN(c.name) FROM exercise_category ec JOIN category c ON c.id=ec.category_id WHERE ec.exercise_id=e.id)",
}

// List returns one page of exercises (without text bodies) plus the total
// row count for the same filters.
func (r *ExerciseRepo) List(ctx context.Context, p ExerciseListParams) ([]model.Exercise, int, error) {
	where, args := buildExerciseFilter(p)

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM exercise e"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT e.id, e.title, e.complexity FROM exercise e" + where
	if p.OrderBy != "" {
		query += " ORDER BY " + orderExpr[p.OrderBy]
		if p.Descending {
			query += " DESC"
		}
	} else {
		query += " ORDER BY e.id"
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, p.Skip)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Exercise
	for rows.Next() {
		var e model.Exercise
		var complexity sql.NullString
		if err := rows.Scan(&e.ID, &e.Title, &complexity); err != nil {
			return nil, 0, err
		}
		e.Complexity = model.Complexity(complexity.String)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachCategories(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func buildExerciseFilter(p ExerciseListParams) (string, []any) {
	var conds []string
	var args []any
	if p.Complexity != "" {
		conds = append(conds, "e.complexity=?")
		args = append(args, string(p.Complexity))
	}
	if p.Category != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM exercise_category ec JOIN category c ON c.id=ec.category_id WHERE ec.exercise_id=e.id AND c.name=?)")
		args = append(args, p.Category)
	}
	if p.TitleLike != "" {
		conds = append(conds, "e.title LIKE ?")
		args = append(args, "%"+p.TitleLike+"%")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// GetByID fetches a single exercise including its text and categories.
func (r *ExerciseRepo) GetByID(ctx context.Context, id uint64) (model.Exercise, error) {
	var e model.Exercise
	var complexity sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, title, text, complexity FROM exercise WHERE id=? LIMIT 1",
		id).Scan(&e.ID, &e.Title, &e.Text, &complexity)
	if err != nil {
		return model.Exercise{}, err
	}
	e.Complexity = model.Complexity(complexity.String)
	list := []model.Exercise{e}
	if err := r.attachCategories(ctx, list); err != nil {
		return model.Exercise{}, err
	}
	return list[0], nil
}

// Create inserts the exercise and links its categories, creating missing
// category rows on the fly. The whole operation is one transaction.
func (r *ExerciseRepo) Create(ctx context.Context, title, text string, complexity model.Complexity, categories []string) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO exercise (title, text, complexity) VALUES (?,?,?)",
		title, text, nullComplexity(complexity))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := linkCategories(ctx, tx, uint64(id), categories); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update patches the given fields; nil pointers leave columns untouched.
// A non-nil categories slice replaces the whole category set.
func (r *ExerciseRepo) Update(ctx context.Context, id uint64, title, text *string, complexity *model.Complexity, categories []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var sets []string
	var args []any
	if title != nil {
		sets = append(sets, "title=?")
		args = append(args, *title)
	}
	if text != nil {
		sets = append(sets, "text=?")
		args = append(args, *text)
	}
	if complexity != nil {
		sets = append(sets, "complexity=?")
		args = append(args, nullComplexity(*complexity))
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := tx.ExecContext(ctx,
			"UPDATE exercise SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
			return err
		}
	}
	if categories != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM exercise_category WHERE exercise_id=?", id); err != nil {
			return err
		}
		if err := linkCategories(ctx, tx, id, categories); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes the exercise, its category links and tracked progress.
func (r *ExerciseRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM completions WHERE exercise_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM exercise_category WHERE exercise_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM exercise WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

func linkCategories(ctx context.Context, tx *sql.Tx, exerciseID uint64, categories []string) error {
	for _, name := range categories {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO category (name) VALUES (?)", name); err != nil {
			return err
		}
		var catID uint64
		if err := tx.QueryRowContext(ctx,
			"SELECT id FROM category WHERE name=? LIMIT 1", name).Scan(&catID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO exercise_category (exercise_id, category_id) VALUES (?,?)",
			exerciseID, catID); err != nil {
			return err
		}
	}
	return nil
}

// attachCategories fills the Categories slice of every exercise in one
// round trip.
func (r *ExerciseRepo) attachCategories(ctx context.Context, list []model.Exercise) error {
	if len(list) == 0 {
		return nil
	}
	idx := make(map[uint64]int, len(list))
	placeholders := make([]string, 0, len(list))
	args := make([]any, 0, len(list))
	for i := range list {
		list[i].Categories = []string{}
		idx[list[i].ID] = i
		placeholders = append(placeholders, "?")
		args = append(args, list[i].ID)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT ec.exercise_id, c.name FROM exercise_category ec JOIN category c ON c.id=ec.category_id WHERE ec.exercise_id IN ("+
			strings.Join(placeholders, ",")+") ORDER BY c.name", args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var exID uint64
		var name string
		if err := rows.Scan(&exID, &name); err != nil {
			return err
		}
		if i, ok := idx[exID]; ok {
			list[i].Categories = append(list[i].Categories, name)
		}
	}
	return rows.Err()
}

func nullComplexity(c model.Complexity) any {
	if c == "" {
		return nil
	}
	return string(c)
}
