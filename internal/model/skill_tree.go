package model

import "gorm.io/datatypes"

// SkillTree 每条学习路径对应一棵技能树，节点构成有向无环的前置关系图
type SkillTree struct {
	BaseModel
	PathID      uint   `gorm:"uniqueIndex;not null" json:"pathId"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Nodes []SkillNode `gorm:"foreignKey:SkillTreeID" json:"nodes,omitempty"`
}

func (SkillTree) TableName() string {
	return "skill_trees"
}

type SkillNodeType string

const (
	SkillNodePassive SkillNodeType = "passive"
	SkillNodeActive  SkillNodeType = "active"
)

// SkillNode 技能树节点。Prerequisites 只允许引用同一棵树内的节点 ID。
type SkillNode struct {
	BaseModel
	SkillTreeID   uint                       `gorm:"index;not null" json:"skillTreeId"`
	Title         string                     `gorm:"size:200;not null" json:"title"`
	Description   string                     `gorm:"type:text" json:"description"`
	NodeType      SkillNodeType              `gorm:"type:enum('passive','active');default:'passive'" json:"nodeType"`
	SPCost        int                        `gorm:"not null" json:"spCost"`
	Prerequisites datatypes.JSONSlice[uint]  `json:"prerequisites"`
	PositionX     float64                    `gorm:"default:0" json:"positionX"`
	PositionY     float64                    `gorm:"default:0" json:"positionY"`
}

func (SkillNode) TableName() string {
	return "skill_nodes"
}
