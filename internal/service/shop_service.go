package service

import (
	"errors"
	"time"

	"levelup_backend/internal/model"
	"levelup_backend/internal/util"

	"gorm.io/gorm"
)

// ThemeStore 主题商店的存取接口
type ThemeStore interface {
	ListActive() ([]model.Theme, error)
	FindByThemeID(themeID string) (*model.Theme, error)
	ListPurchases(userID uint) ([]model.ThemePurchase, error)
	HasPurchased(userID uint, themeID string) (bool, error)
	ApplyPurchase(purchase *model.ThemePurchase, remainingSP int) error
}

// ShopUserStore 商店需要的用户读写
type ShopUserStore interface {
	FindByID(id uint) (*model.User, error)
	Update(user *model.User) error
}

// ShopService 主题商店。SP 扣减复用进度引擎的按用户串行，
// 默认主题恒视为已拥有，购买与解锁一样靠唯一记录保证幂等。
type ShopService struct {
	ThemeRepo   ThemeStore
	UserRepo    ShopUserStore
	Progression *ProgressionService
}

func NewShopService(themeRepo ThemeStore, userRepo ShopUserStore, progression *ProgressionService) *ShopService {
	return &ShopService{
		ThemeRepo:   themeRepo,
		UserRepo:    userRepo,
		Progression: progression,
	}
}

const defaultThemeID = "default"

type ThemeView struct {
	model.Theme
	IsPurchased bool `json:"isPurchased"`
	IsActive    bool `json:"isActive"`
}

type ShopThemesResponse struct {
	Themes []ThemeView `json:"themes"`
	UserSP int         `json:"userSp"`
}

func (s *ShopService) ListThemes(userID uint) (*ShopThemesResponse, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	themes, err := s.ThemeRepo.ListActive()
	if err != nil {
		return nil, err
	}

	purchases, err := s.ThemeRepo.ListPurchases(userID)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]bool, len(purchases)+1)
	owned[defaultThemeID] = true
	for _, p := range purchases {
		owned[p.ThemeID] = true
	}

	views := make([]ThemeView, len(themes))
	for i, t := range themes {
		views[i] = ThemeView{
			Theme:       t,
			IsPurchased: owned[t.ThemeID],
			IsActive:    user.ActiveTheme == t.ThemeID,
		}
	}

	return &ShopThemesResponse{Themes: views, UserSP: user.SP}, nil
}

type PurchaseResult struct {
	RemainingSP      int  `json:"remainingSp"`
	AlreadyPurchased bool `json:"alreadyPurchased"`
}

func (s *ShopService) PurchaseTheme(userID uint, themeID string) (*PurchaseResult, error) {
	theme, err := s.ThemeRepo.FindByThemeID(themeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrThemeNotFound
		}
		return nil, err
	}

	var result *PurchaseResult
	err = s.Progression.WithUserLock(userID, func() error {
		user, err := s.UserRepo.FindByID(userID)
		if err != nil {
			return err
		}

		if themeID == defaultThemeID {
			result = &PurchaseResult{RemainingSP: user.SP, AlreadyPurchased: true}
			return nil
		}

		purchased, err := s.ThemeRepo.HasPurchased(userID, themeID)
		if err != nil {
			return err
		}
		if purchased {
			result = &PurchaseResult{RemainingSP: user.SP, AlreadyPurchased: true}
			return nil
		}

		if user.SP < theme.SPCost {
			return util.ErrInsufficientPoints
		}

		remaining := user.SP - theme.SPCost
		purchase := &model.ThemePurchase{
			UserID:      userID,
			ThemeID:     themeID,
			SPSpent:     theme.SPCost,
			PurchasedAt: time.Now(),
		}
		if err := s.ThemeRepo.ApplyPurchase(purchase, remaining); err != nil {
			return err
		}

		result = &PurchaseResult{RemainingSP: remaining}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ShopService) ActivateTheme(userID uint, themeID string) error {
	if themeID != defaultThemeID {
		if _, err := s.ThemeRepo.FindByThemeID(themeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrThemeNotFound
			}
			return err
		}

		purchased, err := s.ThemeRepo.HasPurchased(userID, themeID)
		if err != nil {
			return err
		}
		if !purchased {
			return util.ErrThemeNotPurchased
		}
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return err
	}
	user.ActiveTheme = themeID
	return s.UserRepo.Update(user)
}
