package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"balotera-backend/internal/models"
)

func TestValidCredential(t *testing.T) {
	assert.True(t, models.ValidCredential("abc"))
	assert.True(t, models.ValidCredential("player99"))
	assert.False(t, models.ValidCredential("ab"))
	assert.False(t, models.ValidCredential("UPPER"))
	assert.False(t, models.ValidCredential("with space"))
	assert.False(t, models.ValidCredential("waaaaaaaaaaaaaytoolongname"))
}

func TestNewAccountWelcomeBonus(t *testing.T) {
	co := models.NewAccount("juan99", "clave123", "CO")
	assert.Equal(t, "COP", co.Currency)
	assert.Equal(t, int64(2000), co.Balance)
	assert.NotNil(t, co.LastCreditNotice)
	assert.False(t, co.LastCreditNotice.Seen)
	assert.Equal(t, models.RoleUser, co.Role)
	assert.NotEmpty(t, co.ID)

	intl := models.NewAccount("sam", "pass123", "US")
	assert.Equal(t, "USD", intl.Currency)
	assert.Equal(t, int64(2), intl.Balance)
}

func TestPlaceBetRequestValidate(t *testing.T) {
	ok := models.PlaceBetRequest{Picks: []string{"01", "02", "03"}, Stake: 100}
	assert.NoError(t, ok.Validate())

	cases := []models.PlaceBetRequest{
		{Picks: []string{"01", "02"}, Stake: 100},                             // too few
		{Picks: []string{"01", "02", "03", "04", "05", "06"}, Stake: 100},     // too many
		{Picks: []string{"01", "02", "100"}, Stake: 100},                      // bad ball
		{Picks: []string{"01", "02", "00"}, Stake: 100},                       // zero ball
		{Picks: []string{"01", "01", "02"}, Stake: 100},                       // duplicate
		{Picks: []string{"01", "02", "03"}, Stake: 99},                        // under min
		{Picks: []string{"01", "02", "03"}, Stake: 4001},                      // over max
	}
	for i, c := range cases {
		assert.Error(t, c.Validate(), "case %d should fail", i)
	}
}

func TestValidPick(t *testing.T) {
	assert.True(t, models.ValidPick("01"))
	assert.True(t, models.ValidPick("99"))
	assert.False(t, models.ValidPick("00"))
	assert.False(t, models.ValidPick("1"))
	assert.False(t, models.ValidPick("1a"))
	assert.Equal(t, "07", models.FormatBall(7))
}

func TestDocumentUserOps(t *testing.T) {
	doc := &models.Document{
		AllowRegister: true,
		Users: []*models.Account{
			models.NewAccount("ana11", "pw1234", "CO"),
			models.NewAccount("bob22", "pw1234", "US"),
		},
	}

	ana := doc.FindByUsername("ana11")
	assert.NotNil(t, ana)
	assert.Equal(t, ana, doc.FindUser(ana.ID))
	assert.Nil(t, doc.FindUser("missing"))

	assert.True(t, doc.RemoveUser(ana.ID))
	assert.False(t, doc.RemoveUser(ana.ID))
	assert.Len(t, doc.Users, 1)
}

func TestHasDueWagers(t *testing.T) {
	a := &models.Account{
		PendingWagers: []models.PendingWager{
			{ID: "w1", TargetCycle: 10},
			{ID: "w2", TargetCycle: 12},
		},
	}
	assert.False(t, a.HasDueWagers(9))
	assert.True(t, a.HasDueWagers(10))
	assert.True(t, a.HasDueWagers(11))
}

func TestCapWagerHistory(t *testing.T) {
	h := make([]models.WagerRecord, models.HistoryCap+5)
	for i := range h {
		h[i].ID = models.FormatBall(i % 99)
	}
	capped := models.CapWagerHistory(h)
	assert.Len(t, capped, models.HistoryCap)
	assert.Equal(t, h[5], capped[0])
}
