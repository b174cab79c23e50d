package models

import "gorm.io/gorm"

// Synthesis represents a discussion mind map
type Synthesis struct {
	gorm.Model
	PublicID     string `gorm:"size:64;uniqueIndex;not null"`
	DiscussionID string `gorm:"size:100;index"`
	Title        string `gorm:"not null;size:200"`
	Summary      string `gorm:"size:2000"`
	UserID       uint   `gorm:"not null;index"`
	User         User   `gorm:"foreignKey:UserID" json:"-"`

	Nodes []SynthesisNode `gorm:"foreignKey:SynthesisID;constraint:OnDelete:CASCADE;"`
	Edges []SynthesisEdge `gorm:"foreignKey:SynthesisID;constraint:OnDelete:CASCADE;"`
}

type SynthesisNode struct {
	gorm.Model
	SynthesisID uint   `gorm:"not null;index"`
	NodeKey     string `gorm:"not null;size:64"`
	Ordinal     int    `gorm:"not null"`
	Label       string `gorm:"not null;size:200"`
	Summary     string `gorm:"size:2000"`
	Category    string `gorm:"size:100"`
}

type SynthesisEdge struct {
	gorm.Model
	SynthesisID uint   `gorm:"not null;index"`
	SourceKey   string `gorm:"not null;size:64"`
	TargetKey   string `gorm:"not null;size:64"`
	Label       string `gorm:"size:200"`
	Ordinal     int    `gorm:"not null"`
}

func (Synthesis) TableName() string     { return "syntheses" }
func (SynthesisNode) TableName() string { return "synthesis_nodes" }
func (SynthesisEdge) TableName() string { return "synthesis_edges" }
