package domain

import (
	"time"
)

// Enrollment 表示一个用户和一个培训之间的报名关系，
// (user_id, training_id) 在数据库中有唯一约束
type Enrollment struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	TrainingID int64     `json:"trainingId"`
	CreatedAt  time.Time `json:"createdAt"`
}
