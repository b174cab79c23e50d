package models

import "gorm.io/gorm"

// User represents a student or instructor known to the system
type User struct {
	gorm.Model
	Auth0ID  string    `gorm:"uniqueIndex;not null;size:191"`
	Nickname string    `gorm:"size:100"`
	Pathways []Pathway `gorm:"foreignKey:UserID" json:"-"`
}
