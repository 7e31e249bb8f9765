package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")

	ErrLessonNotFound    = errors.New("lesson not found")
	ErrSkillNodeNotFound = errors.New("skill node not found")
	ErrSkillTreeNotFound = errors.New("skill tree not found")
	ErrPathNotFound      = errors.New("learning path not found")

	// 幂等重复操作，向调用方报告为信息性成功而非失败
	ErrAlreadyCompleted = errors.New("lesson already completed")
	ErrAlreadyUnlocked  = errors.New("skill already unlocked")

	ErrPrerequisitesNotMet = errors.New("prerequisites not met")
	ErrInsufficientPoints  = errors.New("insufficient skill points")

	// 内容编排缺陷：前置关系图存在环或悬空引用，正常内容下不应出现
	ErrMalformedGraph = errors.New("malformed skill graph")

	ErrThemeNotFound     = errors.New("theme not found")
	ErrThemePurchased    = errors.New("theme already purchased")
	ErrThemeNotPurchased = errors.New("theme not purchased")
)
