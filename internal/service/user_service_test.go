package service

import (
	"testing"
	"time"

	"levelup_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func completionAt(t time.Time) model.LessonCompletion {
	return model.LessonCompletion{CompletedAt: t}
}

func TestCompletionStreak(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)

	t.Run("no completions", func(t *testing.T) {
		assert.Equal(t, 0, completionStreak(nil, now))
	})

	t.Run("today only", func(t *testing.T) {
		completions := []model.LessonCompletion{completionAt(now.Add(-2 * time.Hour))}
		assert.Equal(t, 1, completionStreak(completions, now))
	})

	t.Run("three consecutive days", func(t *testing.T) {
		completions := []model.LessonCompletion{
			completionAt(now),
			completionAt(now.AddDate(0, 0, -1)),
			completionAt(now.AddDate(0, 0, -2)),
		}
		assert.Equal(t, 3, completionStreak(completions, now))
	})

	t.Run("gap breaks streak", func(t *testing.T) {
		completions := []model.LessonCompletion{
			completionAt(now),
			completionAt(now.AddDate(0, 0, -2)),
		}
		assert.Equal(t, 1, completionStreak(completions, now))
	})

	t.Run("yesterday keeps streak alive", func(t *testing.T) {
		completions := []model.LessonCompletion{
			completionAt(now.AddDate(0, 0, -1)),
			completionAt(now.AddDate(0, 0, -2)),
		}
		assert.Equal(t, 2, completionStreak(completions, now))
	})

	t.Run("older completions do not count", func(t *testing.T) {
		completions := []model.LessonCompletion{
			completionAt(now.AddDate(0, 0, -5)),
		}
		assert.Equal(t, 0, completionStreak(completions, now))
	})
}
