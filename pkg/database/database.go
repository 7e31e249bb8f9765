package database

import (
	"fmt"
	"log"

	"levelup_backend/internal/config"
	"levelup_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		cfg.Database.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式默认不自动迁移，需 -migrate 显式开启
	if cfg.Server.Mode == "release" && !cfg.ForceMigrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.LearningPath{},
		&model.LearningModule{},
		&model.Lesson{},
		&model.SkillTree{},
		&model.SkillNode{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.LessonCompletion{},
		&model.SkillUnlock{},
		&model.Theme{},
		&model.ThemePurchase{},
		&model.GeneratedPlan{},
	)
	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedDefaults(db)

	return db, nil
}

// seedDefaults 空表时写入默认主题与成就定义
func seedDefaults(db *gorm.DB) {
	var themeCount int64
	db.Model(&model.Theme{}).Count(&themeCount)
	if themeCount == 0 {
		defaultThemes := []model.Theme{
			{ThemeID: "default", Title: "默认主题", Description: "经典亮色界面", PreviewIcon: "☀️", SPCost: 0, IsActive: true},
			{ThemeID: "dark", Title: "暗黑主题", Description: "深色护眼界面", PreviewIcon: "🌙", SPCost: 100, IsActive: true},
			{ThemeID: "cyberpunk", Title: "赛博朋克", Description: "霓虹风格界面", PreviewIcon: "🤖", SPCost: 150, IsActive: true},
		}
		for i := range defaultThemes {
			db.Create(&defaultThemes[i])
		}
	}

	var achievementCount int64
	db.Model(&model.Achievement{}).Count(&achievementCount)
	if achievementCount == 0 {
		defaultAchievements := []model.Achievement{
			{Code: "first_lesson", Name: "初出茅庐", Description: "完成第一个课时", Condition: model.CondLessonsCompleted, Threshold: 1, XPReward: 50, SPReward: 5},
			{Code: "ten_lessons", Name: "渐入佳境", Description: "完成 10 个课时", Condition: model.CondLessonsCompleted, Threshold: 10, XPReward: 200, SPReward: 20},
			{Code: "fifty_lessons", Name: "勤学不辍", Description: "完成 50 个课时", Condition: model.CondLessonsCompleted, Threshold: 50, XPReward: 500, SPReward: 50},
			{Code: "xp_1000", Name: "小有所成", Description: "累计获得 1000 XP", Condition: model.CondTotalXP, Threshold: 1000, XPReward: 100, SPReward: 10},
			{Code: "xp_10000", Name: "学富五车", Description: "累计获得 10000 XP", Condition: model.CondTotalXP, Threshold: 10000, XPReward: 500, SPReward: 50},
			{Code: "level_5", Name: "更上一层", Description: "达到 5 级", Condition: model.CondLevelReached, Threshold: 5, XPReward: 0, SPReward: 25},
			{Code: "level_10", Name: "十层高台", Description: "达到 10 级", Condition: model.CondLevelReached, Threshold: 10, XPReward: 0, SPReward: 50},
		}
		for i := range defaultAchievements {
			db.Create(&defaultAchievements[i])
		}
	}
}
