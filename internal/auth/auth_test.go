package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleNames(t *testing.T) {
	assert.Equal(t, "admin", RoleAdmin.String())
	assert.Equal(t, "cajero", RoleCashier.String())
	assert.Equal(t, "mesero", RoleServer.String())
	assert.Equal(t, "bar", RoleBar.String())
	assert.Equal(t, "cocina", RoleKitchen.String())
	assert.Equal(t, "operaciones", RoleOperations.String())
	assert.Equal(t, "desconocido", Role(42).String())
}

func TestRoleGates(t *testing.T) {
	approvers := []Role{RoleAdmin, RoleOperations}
	for _, r := range approvers {
		assert.True(t, r.CanApproveCancellations(), "%s should approve", r)
		assert.True(t, r.CanRequestCancellations(), "%s should request", r)
	}

	assert.True(t, RoleServer.CanRequestCancellations())
	assert.False(t, RoleServer.CanApproveCancellations())

	for _, r := range []Role{RoleCashier, RoleBar, RoleKitchen} {
		assert.False(t, r.CanRequestCancellations(), "%s should not request", r)
		assert.False(t, r.CanApproveCancellations(), "%s should not approve", r)
	}
}

func TestStaticAuthorizer(t *testing.T) {
	want := User{ID: "ana", Role: RoleServer}
	got, err := Static{User: want}.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
