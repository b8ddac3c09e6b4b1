package model

import "time"

type Advertisement struct {
	AdID          int64
	Title         string
	Description   string
	URL           string
	Reward        float64
	CooldownHours int
	IsActive      bool
	CreatedAt     time.Time
}

// AdLastView pairs an active ad with the requesting user's most recent
// view of it, nil when the user has never viewed the ad.
type AdLastView struct {
	Ad           Advertisement
	LastViewDate *time.Time
}

type AdEligibility struct {
	AdID           int64
	Title          string
	Reward         float64
	Eligible       bool
	RemainingHours int
}

type AdStats struct {
	AdID           int64
	TotalViews     int
	ConfirmedViews int
	ViewerIDs      []int64
}
