package model

import (
	"time"
)

// UserModel mirrors the 'users' table. Email uniqueness is enforced case-insensitively by a
// functional index created in the migrations.
type UserModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string `gorm:"type:varchar(254);not null"`
	FirstName    string `gorm:"type:varchar(150);not null;default:''"`
	LastName     string `gorm:"type:varchar(150);not null;default:''"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	IsStaff      bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Profile *ProfileModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ProfileModel mirrors the 'profiles' table. UserID is both primary key and reference to users.id.
type ProfileModel struct {
	UserID       int64      `gorm:"primaryKey;autoIncrement:false"`
	Type         string     `gorm:"type:varchar(20);not null;index"`
	File         *string    `gorm:"type:varchar(255)"`
	UploadedAt   *time.Time
	Location     *string    `gorm:"type:varchar(255)"`
	Tel          *string    `gorm:"type:varchar(50)"`
	Description  *string    `gorm:"type:text"`
	WorkingHours *string    `gorm:"type:varchar(100)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProfileModel) TableName() string {
	return "profiles"
}
