package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balotera-backend/internal/models"
	"balotera-backend/internal/store"
)

func TestAdjustBalance(t *testing.T) {
	ctx := context.Background()
	account := newTestAccount(1000)
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{account}})
	s := NewAdminService(st)

	updated, err := s.AdjustBalance(ctx, account.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), updated.Balance)
	require.NotNil(t, updated.LastCreditNotice)
	assert.Equal(t, "Ajuste admin (suma)", updated.LastCreditNotice.Note)
	assert.False(t, updated.LastCreditNotice.Seen)

	updated, err = s.AdjustBalance(ctx, account.ID, -300)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), updated.Balance)
	assert.Equal(t, "Ajuste admin (resta)", updated.LastCreditNotice.Note)

	_, err = s.AdjustBalance(ctx, account.ID, 0)
	assert.Error(t, err, "zero delta")
	_, err = s.AdjustBalance(ctx, account.ID, -5000)
	assert.Error(t, err, "deduct beyond balance")
	_, err = s.AdjustBalance(ctx, "missing", 100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetPassword(t *testing.T) {
	ctx := context.Background()
	account := newTestAccount(1000)
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{account}})
	s := NewAdminService(st)

	require.NoError(t, s.SetPassword(ctx, account.ID, "nueva9"))

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "nueva9", snap.Doc.Users[0].Password)

	assert.Error(t, s.SetPassword(ctx, account.ID, "NoVale"), "uppercase rejected")
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	player := newTestAccount(1000)
	boss := models.NewAccount("admin1", "clave1", "CO")
	boss.Role = models.RoleAdmin
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{player, boss}})
	s := NewAdminService(st)

	require.NoError(t, s.DeleteUser(ctx, player.ID))

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Doc.Users, 1)
	assert.Equal(t, "admin1", snap.Doc.Users[0].Username)

	assert.Error(t, s.DeleteUser(ctx, boss.ID), "admin accounts are protected")
}

func TestToggleRegister(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(&models.Document{AllowRegister: true})
	s := NewAdminService(st)

	allow, err := s.ToggleRegister(ctx)
	require.NoError(t, err)
	assert.False(t, allow)

	allow, err = s.ToggleRegister(ctx)
	require.NoError(t, err)
	assert.True(t, allow)
}

func TestMarkNoticeSeen(t *testing.T) {
	ctx := context.Background()
	account := models.NewAccount("juan99", "clave1", "CO")
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{account}})
	s := newAuthService(st)

	require.NotNil(t, account.LastCreditNotice)
	require.NoError(t, s.MarkNoticeSeen(ctx, account.ID))

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Doc.Users[0].LastCreditNotice.Seen)
}
