package model

import "time"

// Theme 商店内可购买的界面主题
type Theme struct {
	BaseModel
	ThemeID     string `gorm:"size:50;uniqueIndex;not null" json:"themeId"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	PreviewIcon string `gorm:"size:10;default:'🎨'" json:"previewIcon"`
	SPCost      int    `gorm:"default:0" json:"spCost"`
	IsActive    bool   `gorm:"default:true" json:"isActive"`
}

func (Theme) TableName() string {
	return "themes"
}

// ThemePurchase 用户主题购买记录，user+theme 唯一
type ThemePurchase struct {
	BaseModel
	UserID      uint      `gorm:"uniqueIndex:idx_user_theme;not null" json:"userId"`
	ThemeID     string    `gorm:"size:50;uniqueIndex:idx_user_theme;not null" json:"themeId"`
	SPSpent     int       `json:"spSpent"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

func (ThemePurchase) TableName() string {
	return "theme_purchases"
}
