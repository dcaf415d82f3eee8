package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusSuccess.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
	assert.True(t, StatusCancel.IsTerminal())
}

func TestDisplayName(t *testing.T) {
	tx := &Transaction{Name: "Alice"}
	assert.Equal(t, "Alice", tx.DisplayName())

	tx.Anonymous = true
	assert.Equal(t, "Anonymous", tx.DisplayName())
}

func TestDonationTier(t *testing.T) {
	assert.Equal(t, TierBronze, DonationTier(0))
	assert.Equal(t, TierBronze, DonationTier(50000))
	assert.Equal(t, TierSilver, DonationTier(50001))
	assert.Equal(t, TierGold, DonationTier(100001))
	assert.Equal(t, TierPlatinum, DonationTier(500001))
	assert.Equal(t, TierDiamond, DonationTier(1000001))
}

func TestInstantDepositTriggered(t *testing.T) {
	tx := &Transaction{}
	assert.False(t, tx.InstantDepositTriggered())

	tx.InstantFee = 1500
	assert.True(t, tx.InstantDepositTriggered())

	tx = &Transaction{TotalReceived: 147500}
	assert.True(t, tx.InstantDepositTriggered())
}
