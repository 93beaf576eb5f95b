package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusintern/internal/domain/principal"
)

func TestPrincipalReadsDoNotShareAchievements(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Principals()
	created, err := repo.Create(ctx, principal.Principal{
		Role:         principal.RoleStudent,
		Name:         "Sam",
		Email:        "sam@campus.edu",
		Achievements: []string{"hackathon", "dean's list"},
	})
	require.NoError(t, err)
	created.Achievements[0] = "edited via create"

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	byID.Achievements[0] = "edited via id"
	_ = append(byID.Achievements[:1], "appended via id")

	byEmail, err := repo.GetByEmail(ctx, "SAM@campus.edu")
	require.NoError(t, err)
	byEmail.Achievements[1] = "edited via email"

	listed, err := repo.ListByRoles(ctx, []principal.Role{principal.RoleStudent})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].Achievements[0] = "edited via list"

	toggled, err := repo.ToggleBlocked(ctx, created.ID, []principal.Role{principal.RoleStudent})
	require.NoError(t, err)
	toggled.Achievements[0] = "edited via toggle"

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"hackathon", "dean's list"}, stored.Achievements)
	assert.True(t, stored.IsBlocked)
}

func TestPrincipalEmailIsUniqueIgnoringCase(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Principals()
	_, err := repo.Create(ctx, principal.Principal{Role: principal.RoleStudent, Name: "Sam", Email: "sam@campus.edu"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, principal.Principal{Role: principal.RoleCompany, Name: "Sam Inc", Email: "Sam@Campus.edu"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email already registered")
}
