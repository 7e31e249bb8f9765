package service

import (
	"levelup_backend/internal/config"
	"levelup_backend/internal/model"
	"levelup_backend/internal/repository"
)

type AchievementService struct {
	AchievementRepo *repository.AchievementRepository
	UserRepo        *repository.UserRepository
	Curve           config.ProgressionConfig
}

func NewAchievementService(
	achievementRepo *repository.AchievementRepository,
	userRepo *repository.UserRepository,
	curve config.ProgressionConfig,
) *AchievementService {
	return &AchievementService{
		AchievementRepo: achievementRepo,
		UserRepo:        userRepo,
		Curve:           curve,
	}
}

type UserAchievements struct {
	TotalXP      int                 `json:"totalXp"`
	TotalSP      int                 `json:"totalSp"`
	CurrentLevel int                 `json:"currentLevel"`
	NextLevelXP  int                 `json:"nextLevelXp"`
	Badges       []model.Achievement `json:"badges"`
	Leaderboard  []LeaderboardEntry  `json:"leaderboard"`
}

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	User   string `json:"user"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
	Avatar string `json:"avatar,omitempty"`
}

func (s *AchievementService) GetUserAchievements(userID uint) (*UserAchievements, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	achievements, err := s.AchievementRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	leaderboard, err := s.GetLeaderboard(10)
	if err != nil {
		return nil, err
	}

	return &UserAchievements{
		TotalXP:      user.XP,
		TotalSP:      user.SP,
		CurrentLevel: LevelForXP(user.XP, s.Curve),
		NextLevelXP:  XPForNextLevel(user.XP, s.Curve),
		Badges:       achievements,
		Leaderboard:  leaderboard,
	}, nil
}

func (s *AchievementService) ListDefinitions() ([]model.Achievement, error) {
	return s.AchievementRepo.ListDefinitions()
}

func (s *AchievementService) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	users, err := s.UserRepo.FindTopByXP(limit)
	if err != nil {
		return nil, err
	}

	leaderboard := make([]LeaderboardEntry, len(users))
	for i, user := range users {
		leaderboard[i] = LeaderboardEntry{
			Rank:   i + 1,
			User:   user.Name,
			XP:     user.XP,
			Level:  LevelForXP(user.XP, s.Curve),
			Avatar: user.Avatar,
		}
	}

	return leaderboard, nil
}
