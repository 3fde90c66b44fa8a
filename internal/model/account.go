package model

import "time"

// Account represents a login identity as stored in the `accounts` table.
// Each field corresponds to a column. Handlers define their own response
// types with JSON tags; the model stays free of serialization concerns.
//
// Fields:
//  ID           – primary key identifier of the account.
//  Email        – unique, lowercased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – the account's role in the hierarchy.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Account struct {
	ID           uint64    // accounts.id
	Email        string    // accounts.email
	PasswordHash string    // accounts.password_hash
	Role         Role      // accounts.role
	CreatedAt    time.Time // accounts.created_at
	UpdatedAt    time.Time // accounts.updated_at
}
