package service

import (
	"testing"

	"levelup_backend/internal/model"
	"levelup_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeThemeStore struct {
	themes    map[string]*model.Theme
	purchases []model.ThemePurchase
	userSP    map[uint]int
}

func (f *fakeThemeStore) ListActive() ([]model.Theme, error) {
	var out []model.Theme
	for _, t := range f.themes {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeThemeStore) FindByThemeID(themeID string) (*model.Theme, error) {
	if t, ok := f.themes[themeID]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeThemeStore) ListPurchases(userID uint) ([]model.ThemePurchase, error) {
	var out []model.ThemePurchase
	for _, p := range f.purchases {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeThemeStore) HasPurchased(userID uint, themeID string) (bool, error) {
	for _, p := range f.purchases {
		if p.UserID == userID && p.ThemeID == themeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeThemeStore) ApplyPurchase(purchase *model.ThemePurchase, remainingSP int) error {
	f.purchases = append(f.purchases, *purchase)
	f.userSP[purchase.UserID] = remainingSP
	return nil
}

type fakeShopUserStore struct {
	users map[uint]*model.User
	sp    map[uint]int
}

func (f *fakeShopUserStore) FindByID(id uint) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		copied := *u
		copied.SP = f.sp[id]
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeShopUserStore) Update(user *model.User) error {
	f.users[user.ID] = user
	return nil
}

func shopTheme(themeID string, cost int) *model.Theme {
	return &model.Theme{ThemeID: themeID, Title: themeID, SPCost: cost, IsActive: true}
}

func newTestShop(userSP int) (*ShopService, *fakeThemeStore, *fakeShopUserStore) {
	user := &model.User{Name: "tester", ActiveTheme: "default"}
	user.ID = 1

	sp := map[uint]int{1: userSP}
	themeStore := &fakeThemeStore{
		themes: map[string]*model.Theme{
			"default": shopTheme("default", 0),
			"dark":    shopTheme("dark", 100),
		},
		userSP: sp,
	}
	userStore := &fakeShopUserStore{users: map[uint]*model.User{1: user}, sp: sp}

	progression := NewProgressionService(nil, nil, nil, nil, defaultCurve())
	return NewShopService(themeStore, userStore, progression), themeStore, userStore
}

func TestListThemesMarksOwnership(t *testing.T) {
	svc, themeStore, _ := newTestShop(150)
	themeStore.purchases = append(themeStore.purchases, model.ThemePurchase{UserID: 1, ThemeID: "dark"})

	resp, err := svc.ListThemes(1)
	require.NoError(t, err)

	assert.Equal(t, 150, resp.UserSP)
	byID := make(map[string]ThemeView)
	for _, v := range resp.Themes {
		byID[v.ThemeID] = v
	}

	// 默认主题恒视为已拥有
	assert.True(t, byID["default"].IsPurchased)
	assert.True(t, byID["default"].IsActive)
	assert.True(t, byID["dark"].IsPurchased)
	assert.False(t, byID["dark"].IsActive)
}

func TestPurchaseThemeSpendsPoints(t *testing.T) {
	svc, themeStore, _ := newTestShop(150)

	result, err := svc.PurchaseTheme(1, "dark")
	require.NoError(t, err)

	assert.Equal(t, 50, result.RemainingSP)
	assert.False(t, result.AlreadyPurchased)
	require.Len(t, themeStore.purchases, 1)
	assert.Equal(t, 100, themeStore.purchases[0].SPSpent)
}

func TestPurchaseThemeInsufficientPoints(t *testing.T) {
	svc, themeStore, _ := newTestShop(50)

	_, err := svc.PurchaseTheme(1, "dark")
	assert.ErrorIs(t, err, util.ErrInsufficientPoints)
	assert.Empty(t, themeStore.purchases)
}

func TestPurchaseThemeIdempotent(t *testing.T) {
	svc, themeStore, _ := newTestShop(150)

	_, err := svc.PurchaseTheme(1, "dark")
	require.NoError(t, err)

	second, err := svc.PurchaseTheme(1, "dark")
	require.NoError(t, err)
	assert.True(t, second.AlreadyPurchased)
	assert.Equal(t, 50, second.RemainingSP)
	assert.Len(t, themeStore.purchases, 1)
}

func TestPurchaseThemeNotFound(t *testing.T) {
	svc, _, _ := newTestShop(150)

	_, err := svc.PurchaseTheme(1, "rainbow")
	assert.ErrorIs(t, err, util.ErrThemeNotFound)
}

func TestPurchaseDefaultThemeIsNoop(t *testing.T) {
	svc, themeStore, _ := newTestShop(150)

	result, err := svc.PurchaseTheme(1, "default")
	require.NoError(t, err)
	assert.True(t, result.AlreadyPurchased)
	assert.Equal(t, 150, result.RemainingSP)
	assert.Empty(t, themeStore.purchases)
}

func TestActivateThemeRequiresPurchase(t *testing.T) {
	svc, themeStore, userStore := newTestShop(150)

	err := svc.ActivateTheme(1, "dark")
	assert.ErrorIs(t, err, util.ErrThemeNotPurchased)

	themeStore.purchases = append(themeStore.purchases, model.ThemePurchase{UserID: 1, ThemeID: "dark"})
	require.NoError(t, svc.ActivateTheme(1, "dark"))
	assert.Equal(t, "dark", userStore.users[1].ActiveTheme)
}

func TestActivateDefaultThemeAlwaysAllowed(t *testing.T) {
	svc, _, userStore := newTestShop(0)

	require.NoError(t, svc.ActivateTheme(1, "default"))
	assert.Equal(t, "default", userStore.users[1].ActiveTheme)
}

func TestActivateThemeNotFound(t *testing.T) {
	svc, _, _ := newTestShop(150)

	err := svc.ActivateTheme(1, "rainbow")
	assert.ErrorIs(t, err, util.ErrThemeNotFound)
}
