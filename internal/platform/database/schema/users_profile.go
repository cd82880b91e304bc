package schema

// UserProfileTable represents the 'users.profile' table
type UserProfileTable struct {
	Table       string
	ID          string
	StaffNumber string
	Email       string
	DisplayName string
	Role        string
	AuthMethod  string
	IsActive    string
	IsVerified  string
	CreatedAt   string
	UpdatedAt   string
}

// UserProfile is the schema definition for users.profile
var UserProfile = UserProfileTable{
	Table:       "users.profile",
	ID:          "id",
	StaffNumber: "staffnumber",
	Email:       "email",
	DisplayName: "displayname",
	Role:        "role",
	AuthMethod:  "authmethod",
	IsActive:    "isactive",
	IsVerified:  "isverified",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t UserProfileTable) Columns() []string {
	return []string{
		t.ID, t.StaffNumber, t.Email, t.DisplayName, t.Role, t.AuthMethod, t.IsActive, t.IsVerified, t.CreatedAt, t.UpdatedAt,
	}
}
