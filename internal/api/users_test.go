package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferralLink(t *testing.T) {
	r := &userRoutes{botUsername: "adrewards_bot"}
	assert.Equal(t, "https://t.me/adrewards_bot?start=ref_42", r.referralLink(42))
}

func TestReferralLink_NoBotUsername(t *testing.T) {
	r := &userRoutes{}
	assert.Equal(t, "", r.referralLink(42))
}
