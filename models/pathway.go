package models

import "gorm.io/gorm"

// Pathway is the stored form of a learning pathway
type Pathway struct {
	gorm.Model
	PublicID    string `gorm:"size:64;uniqueIndex;not null"`
	Title       string `gorm:"not null;size:200"`
	Description string `gorm:"size:2000"`
	UserID      uint   `gorm:"not null;index"`
	User        User   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Nodes []PathwayNode `gorm:"foreignKey:PathwayID;constraint:OnDelete:CASCADE;"`
	Edges []PathwayEdge `gorm:"foreignKey:PathwayID;constraint:OnDelete:CASCADE;"`
}

// PathwayNode is one learning activity; Ordinal keeps the generator's order
type PathwayNode struct {
	gorm.Model
	PathwayID      uint   `gorm:"not null;uniqueIndex:idx_pathway_node_key"`
	NodeKey        string `gorm:"not null;size:64;uniqueIndex:idx_pathway_node_key"`
	Ordinal        int    `gorm:"not null"`
	Kind           string `gorm:"not null;size:20"`
	Title          string `gorm:"not null;size:200"`
	Description    string `gorm:"size:2000"`
	Topic          string `gorm:"size:200"`
	MotivationText string `gorm:"size:1000"`
	Completed      bool   `gorm:"default:false"`
	Unlocked       bool   `gorm:"default:false"`
}

// PathwayEdge means completing SourceKey unlocks TargetKey
type PathwayEdge struct {
	gorm.Model
	PathwayID uint   `gorm:"not null;index"`
	SourceKey string `gorm:"not null;size:64"`
	TargetKey string `gorm:"not null;size:64"`
	Ordinal   int    `gorm:"not null"`
}
