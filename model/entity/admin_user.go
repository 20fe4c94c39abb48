package entity

import "time"

// AdminUser is a dashboard login.
type AdminUser struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Username  string    `gorm:"column:username;type:varchar(64);not null;uniqueIndex"`
	Password  string    `gorm:"column:password;type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AdminUser) TableName() string {
	return "users"
}
