package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_RankOrdering(t *testing.T) {
	ordered := []Role{RoleViewer, RoleMember, RoleFinance, RoleManager, RoleAdmin}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank(),
			"%s should outrank %s", ordered[i], ordered[i-1])
	}
}

func TestRole_AtLeast(t *testing.T) {
	assert.True(t, RoleFinance.AtLeast(RoleFinance))
	assert.True(t, RoleAdmin.AtLeast(RoleViewer))
	assert.False(t, RoleMember.AtLeast(RoleFinance))
	assert.False(t, Role("INTERN").AtLeast(RoleViewer))
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("").IsValid())
	assert.False(t, Role("SUPERUSER").IsValid())
}
