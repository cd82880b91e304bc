package schema

// SystemAuditLogTable represents the 'system.auditlog' table
type SystemAuditLogTable struct {
	Table     string
	ID        string
	ActorID   string
	ActorRole string
	Action    string
	Detail    string
	CreatedAt string
}

var SystemAuditLog = SystemAuditLogTable{
	Table:     "system.auditlog",
	ID:        "id",
	ActorID:   "actorid",
	ActorRole: "actorrole",
	Action:    "action",
	Detail:    "detail",
	CreatedAt: "createdat",
}
