package model

import "time"

type User struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	Balance    float64
	InvitedBy  *int64
	JoinDate   time.Time
}

type UserInfo struct {
	User      User
	Referrals int
}
