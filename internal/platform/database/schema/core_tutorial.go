package schema

// CoreTutorialTable represents the 'core.tutorial' table
type CoreTutorialTable struct {
	Table       string
	ID          string
	Slug        string
	Title       string
	URL         string
	Description string
	TargetRole  string
	CreatedAt   string
	UpdatedAt   string
}

// CoreTutorial is the schema definition for core.tutorial
var CoreTutorial = CoreTutorialTable{
	Table:       "core.tutorial",
	ID:          "id",
	Slug:        "slug",
	Title:       "title",
	URL:         "url",
	Description: "description",
	TargetRole:  "targetrole",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t CoreTutorialTable) Columns() []string {
	return []string{
		t.ID, t.Slug, t.Title, t.URL, t.Description, t.TargetRole, t.CreatedAt, t.UpdatedAt,
	}
}
