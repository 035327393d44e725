package models

import (
	"strings"
	"time"
)

// User is a portal account. Only the fields the document tracker needs are mapped.
type User struct {
	UserID       int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Email        string     `gorm:"column:email;size:191;unique" json:"email"`
	UserFname    string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname    string     `gorm:"column:user_lname" json:"user_lname"`
	Department   string     `gorm:"column:department;size:150" json:"department"`
	PasswordHash string     `gorm:"column:password_hash" json:"-"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName is the name recorded on route log entries and remarks.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.UserFname + " " + u.UserLname)
	if name == "" {
		return u.Email
	}
	return name
}
