package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sims-go-api/internal/models"
)

func TestCan(t *testing.T) {
	require.True(t, Can(ActionStudentDelete, models.RoleAdmin))
	require.False(t, Can(ActionStudentDelete, models.RoleUser))

	require.True(t, Can(ActionBackupRun, models.RoleAdmin))
	require.False(t, Can(ActionBackupRun, models.RoleUser))

	require.True(t, Can(ActionStudentCreate, models.RoleUser))
	require.True(t, Can(ActionStudentCreate, models.RoleAdmin))

	require.False(t, Can("unknown.action", models.RoleAdmin))
	require.False(t, Can(ActionBackupView, ""))
}
