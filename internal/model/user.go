package model

// User faculty / reviewer profile: users
type User struct {
	UserID          string  `gorm:"type:varchar(64);primaryKey"                  json:"user_id"`
	Name            string  `gorm:"type:varchar(120);not null"                   json:"name"`
	Email           string  `gorm:"type:varchar(255);not null;uniqueIndex"       json:"email"`
	PasswordHash    string  `gorm:"type:varchar(255);not null"                   json:"-"`
	Role            string  `gorm:"type:varchar(100);not null;default:'faculty'" json:"role"`
	College         string  `gorm:"type:varchar(200)"                            json:"college"`
	Department      string  `gorm:"type:varchar(200)"                            json:"department"`
	CommitteeMember bool    `gorm:"not null;default:false"                       json:"committee_member"`
	TotalScore      float64 `gorm:"not null;default:0"                           json:"total_score"`
	BaseModel
}

// TableName users
func (User) TableName() string { return "users" }
