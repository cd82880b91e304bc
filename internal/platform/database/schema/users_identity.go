package schema

// UserIdentityTable represents the 'users.identity' table
type UserIdentityTable struct {
	Table        string
	ID           string
	Email        string
	PasswordHash string
	IsVerified   string
	CreatedAt    string
	UpdatedAt    string
}

// UserIdentity is the schema definition for users.identity
var UserIdentity = UserIdentityTable{
	Table:        "users.identity",
	ID:           "id",
	Email:        "email",
	PasswordHash: "passwordhash",
	IsVerified:   "isverified",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}
