package service

import (
	"errors"
	"time"

	"levelup_backend/internal/config"
	"levelup_backend/internal/model"
	"levelup_backend/internal/repository"
	"levelup_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo     *repository.UserRepository
	ContentRepo  *repository.ContentRepository
	ProgressRepo *repository.ProgressRepository
	Curve        config.ProgressionConfig
}

func NewUserService(
	userRepo *repository.UserRepository,
	contentRepo *repository.ContentRepository,
	progressRepo *repository.ProgressRepository,
	curve config.ProgressionConfig,
) *UserService {
	return &UserService{
		UserRepo:     userRepo,
		ContentRepo:  contentRepo,
		ProgressRepo: progressRepo,
		Curve:        curve,
	}
}

type ProfileResponse struct {
	User           *model.User `json:"user"`
	CompletedCount int         `json:"completedLessons"`
	UnlockedCount  int         `json:"unlockedSkills"`
	NextLevelXP    int         `json:"nextLevelXp"`
}

func (s *UserService) GetProfile(userID uint) (*ProfileResponse, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	state, err := s.ProgressRepo.GetState(userID)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{
		User:           user,
		CompletedCount: len(state.CompletedLessons),
		UnlockedCount:  len(state.UnlockedSkills),
		NextLevelXP:    XPForNextLevel(user.XP, s.Curve),
	}, nil
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	user.Name = req.Name
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateAvatar(userID uint, url string) error {
	return s.UserRepo.UpdateAvatar(userID, url)
}

type ProgressSummary struct {
	TotalLessons       int64 `json:"totalLessons"`
	CompletedLessons   int   `json:"completedLessons"`
	CurrentStreak      int   `json:"currentStreak"`
	TotalXP            int   `json:"totalXp"`
	TotalSP            int   `json:"totalSp"`
	Level              int   `json:"level"`
	ProgressPercentage int   `json:"progressPercentage"`
}

func (s *UserService) GetProgressSummary(userID uint) (*ProgressSummary, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	total, err := s.ContentRepo.CountLessons()
	if err != nil {
		return nil, err
	}

	completions, err := s.ProgressRepo.ListCompletions(userID)
	if err != nil {
		return nil, err
	}

	percentage := 0
	if total > 0 {
		percentage = int(float64(len(completions)) / float64(total) * 100)
	}

	return &ProgressSummary{
		TotalLessons:       total,
		CompletedLessons:   len(completions),
		CurrentStreak:      completionStreak(completions, time.Now()),
		TotalXP:            user.XP,
		TotalSP:            user.SP,
		Level:              user.Level,
		ProgressPercentage: percentage,
	}, nil
}

// completionStreak 从今天（或昨天）往回数连续有完成记录的天数
func completionStreak(completions []model.LessonCompletion, now time.Time) int {
	days := make(map[string]bool, len(completions))
	for _, c := range completions {
		days[c.CompletedAt.Format("2006-01-02")] = true
	}

	day := now
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
