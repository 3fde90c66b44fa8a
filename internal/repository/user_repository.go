package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/reading-practice/internal/model"
)

// UserRepo persists reading profiles in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a profile under an account and returns its ID.
func (r *UserRepo) Create(ctx context.Context, accountID uint64, username string, proficiency float64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (account_id, username, proficiency) VALUES (?,?,?)",
		accountID, username, proficiency)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a profile by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,account_id,username,proficiency FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.AccountID, &u.Username, &u.Proficiency)
	return u, err
}

// List returns profiles with offset pagination. When accountID is
// non-zero only that account's profiles are returned; zero means all
// accounts (admin view).
func (r *UserRepo) List(ctx context.Context, accountID uint64, skip, limit int) ([]model.User, error) {
	query := "SELECT id,account_id,username,proficiency FROM users"
	args := []any{}
	if accountID != 0 {
		query += " WHERE account_id=?"
		args = append(args, accountID)
	}
	query += " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, limit, skip)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.AccountID, &u.Username, &u.Proficiency); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update patches the given fields; nil pointers leave columns untouched.
func (r *UserRepo) Update(ctx context.Context, id uint64, username *string, proficiency *float64) error {
	set := ""
	args := []any{}
	if username != nil {
		set = "username=?"
		args = append(args, *username)
	}
	if proficiency != nil {
		if set != "" {
			set += ", "
		}
		set += "proficiency=?"
		args = append(args, *proficiency)
	}
	if set == "" {
		return nil // nothing to change
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET "+set+" WHERE id=?", args...)
	return err
}

// Delete removes the profile and its tracked progress.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM completions WHERE user_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}
