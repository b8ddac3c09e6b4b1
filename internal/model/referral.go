package model

import "time"

type Referral struct {
	ReferralID int64
	InviterID  int64
	InvitedID  int64
	JoinDate   time.Time
}
