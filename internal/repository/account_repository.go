package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/reading-practice/internal/model"
	"github.com/iliyamo/reading-practice/internal/utils"
)

// AccountRepo persists login identities in the 'accounts' table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Create hashes the password and inserts the account in a single
// statement, returning its ID. Duplicate emails surface as ErrEmailExists.
func (r *AccountRepo) Create(ctx context.Context, email, password string, role model.Role, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (email, password_hash, role) VALUES (?,?,?)",
		email, hash, string(role))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,created_at,updated_at FROM accounts WHERE email=? LIMIT 1",
		email))
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,created_at,updated_at FROM accounts WHERE id=? LIMIT 1",
		id))
}

func (r *AccountRepo) scanOne(row *sql.Row) (model.Account, error) {
	var a model.Account
	var role string
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Account{}, err
	}
	a.Role = model.Role(role)
	return a, nil
}

// List returns every account, newest last.
func (r *AccountRepo) List(ctx context.Context) ([]model.Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,password_hash,role,created_at,updated_at FROM accounts ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var a model.Account
		var role string
		if err := rows.Scan(&a.ID, &a.Email, &a.PasswordHash, &role, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Role = model.Role(role)
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateEmail changes the login email. Duplicate targets surface as
// ErrEmailExists so handlers can answer 409.
func (r *AccountRepo) UpdateEmail(ctx context.Context, id uint64, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET email=? WHERE id=?", email, id)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrEmailExists
	}
	return err
}

// UpdatePassword hashes the new password and stores it for the account
// identified by email. The write is a single-row atomic update.
func (r *AccountRepo) UpdatePassword(ctx context.Context, email, password string, cost int) error {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET password_hash=? WHERE email=?", hash, email)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the account and its dependent profiles and progress.
func (r *AccountRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE c FROM completions c JOIN users u ON u.id=c.user_id WHERE u.account_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE account_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// HasSuperadmin reports whether any superadmin account exists. Used by
// the first-boot bootstrap to stay idempotent.
func (r *AccountRepo) HasSuperadmin(ctx context.Context) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM accounts WHERE role=?", string(model.RoleSuperadmin)).Scan(&n)
	return n > 0, err
}
