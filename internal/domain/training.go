package domain

import (
	"time"
)

type TrainingMode string

const (
	TrainingModeOnline  TrainingMode = "ONLINE"
	TrainingModeOffline TrainingMode = "OFFLINE"
)

type Training struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Mode        TrainingMode `json:"mode"`
	Location    string       `json:"location,omitempty"`
	Platform    string       `json:"platform,omitempty"`
	StartDate   time.Time    `json:"startDate"`
	EndDate     time.Time    `json:"endDate"`
	CreatedAt   time.Time    `json:"createdAt"`
	Version     int32        `json:"-"`
}

// 培训的地点信息：线下培训必须有地点，线上培训必须有平台
func (t *Training) Venue() string {
	if t.Mode == TrainingModeOffline {
		return t.Location
	}
	return t.Platform
}
