package model

import "time"

type AdView struct {
	ViewID      int64
	UserID      int64
	AdID        int64
	ViewDate    time.Time
	IsConfirmed bool
}
