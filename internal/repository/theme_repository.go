package repository

import (
	"levelup_backend/internal/model"

	"gorm.io/gorm"
)

type ThemeRepository struct {
	DB *gorm.DB
}

func NewThemeRepository(db *gorm.DB) *ThemeRepository {
	return &ThemeRepository{DB: db}
}

func (r *ThemeRepository) ListActive() ([]model.Theme, error) {
	var themes []model.Theme
	err := r.DB.Where("is_active = ?", true).Order("sp_cost").Find(&themes).Error
	return themes, err
}

func (r *ThemeRepository) FindByThemeID(themeID string) (*model.Theme, error) {
	var theme model.Theme
	err := r.DB.Where("theme_id = ?", themeID).First(&theme).Error
	return &theme, err
}

func (r *ThemeRepository) ListPurchases(userID uint) ([]model.ThemePurchase, error) {
	var purchases []model.ThemePurchase
	err := r.DB.Where("user_id = ?", userID).Find(&purchases).Error
	return purchases, err
}

func (r *ThemeRepository) HasPurchased(userID uint, themeID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ThemePurchase{}).
		Where("user_id = ? AND theme_id = ?", userID, themeID).
		Count(&count).Error
	return count > 0, err
}

// ApplyPurchase 购买记录与 SP 扣减在同一事务内落库
func (r *ThemeRepository) ApplyPurchase(purchase *model.ThemePurchase, remainingSP int) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(purchase).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).
			Where("id = ?", purchase.UserID).
			Update("sp", remainingSP).Error
	})
}
