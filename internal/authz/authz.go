// Package authz centralizes the authorization decision so role checks are not
// duplicated across handlers.
package authz

import "github.com/noah-isme/sims-go-api/internal/models"

// Actions gated by role.
const (
	ActionStudentCreate = "student.create"
	ActionStudentDelete = "student.delete"
	ActionBackupView    = "backup.view"
	ActionBackupRun     = "backup.run"
)

var allowed = map[string]map[string]struct{}{
	ActionStudentCreate: {models.RoleAdmin: {}, models.RoleUser: {}},
	ActionStudentDelete: {models.RoleAdmin: {}},
	ActionBackupView:    {models.RoleAdmin: {}},
	ActionBackupRun:     {models.RoleAdmin: {}},
}

// Can reports whether the given role may perform the action. Unknown actions
// are denied.
func Can(action, role string) bool {
	roles, ok := allowed[action]
	if !ok {
		return false
	}

	_, ok = roles[role]
	return ok
}
