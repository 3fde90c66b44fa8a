package repository

import (
	"context"
	"database/sql"
	"strings"
)

// CategoryRepo persists exercise categories ('category' table).
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// List returns all category names in alphabetical order.
func (r *CategoryRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT name FROM category ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Create inserts a new category; duplicates surface as ErrConflict.
func (r *CategoryRepo) Create(ctx context.Context, name string) error {
	_, err := r.DB.ExecContext(ctx, "INSERT INTO category (name) VALUES (?)", name)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrConflict
	}
	return err
}

// Rename changes a category's name, keeping exercise links intact.
func (r *CategoryRepo) Rename(ctx context.Context, oldName, newName string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE category SET name=? WHERE name=?", newName, oldName)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the category and its exercise links.
func (r *CategoryRepo) Delete(ctx context.Context, name string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE ec FROM exercise_category ec JOIN category c ON c.id=ec.category_id WHERE c.name=?",
		name); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM category WHERE name=?", name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}
