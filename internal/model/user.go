package model

// User is a reading profile that belongs to an account. One account can
// own several profiles; progress is tracked per profile, not per account.
//
// Fields:
//  ID          – primary key identifier of the profile.
//  AccountID   – owning account.
//  Username    – display name of the profile.
//  Proficiency – estimated reading proficiency, 0.0 when unknown.
type User struct {
	ID          uint64  // users.id
	AccountID   uint64  // users.account_id
	Username    string  // users.username
	Proficiency float64 // users.proficiency
}
