package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name        string   `gorm:"size:100;not null" json:"name"`
	Email       string   `gorm:"size:100;unique;not null" json:"email"`
	Password    string   `gorm:"size:100;not null" json:"-"`
	Role        UserRole `gorm:"type:enum('student','admin');default:'student'" json:"role"`
	XP          int      `gorm:"default:0" json:"xp"` // 累计经验值，等级由此推导
	SP          int      `gorm:"default:0" json:"sp"` // 可消费技能点
	Level       int      `gorm:"default:1" json:"level"`
	ActiveTheme string   `gorm:"size:50;default:'default'" json:"activeTheme"`
	Avatar      string   `gorm:"size:255" json:"avatar"`
	Disabled    bool     `gorm:"default:false" json:"disabled"`
	LastLogin   time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
