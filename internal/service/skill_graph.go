package service

import (
	"fmt"

	"levelup_backend/internal/model"
	"levelup_backend/internal/util"
)

// Unlockable 判断目标节点当前是否可解锁：前置集合内的每个节点都已解锁。
// 空前置集合即根节点，恒可解锁。链条不会被隐式打通，每个节点单独解锁。
func Unlockable(node *model.SkillNode, unlocked map[uint]bool) bool {
	for _, prereqID := range node.Prerequisites {
		if !unlocked[prereqID] {
			return false
		}
	}
	return true
}

// MissingPrerequisites 返回尚未解锁的前置节点 ID，用于给调用方报告具体未满足项
func MissingPrerequisites(node *model.SkillNode, unlocked map[uint]bool) []uint {
	var missing []uint
	for _, prereqID := range node.Prerequisites {
		if !unlocked[prereqID] {
			missing = append(missing, prereqID)
		}
	}
	return missing
}

const (
	colorWhite = iota // 未访问
	colorGray         // 在当前 DFS 栈上
	colorBlack        // 已完成
)

// ValidateTree 校验一棵技能树的前置关系图：所有引用都指向树内节点，
// 且不存在环（节点不能直接或传递地依赖自身）。三色 DFS，病态输入不会死循环。
// 在内容编排写入时调用；解锁路径默认图已通过校验。
func ValidateTree(nodes []model.SkillNode) error {
	byID := make(map[uint]*model.SkillNode, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}

	for i := range nodes {
		for _, prereqID := range nodes[i].Prerequisites {
			if _, ok := byID[prereqID]; !ok {
				return fmt.Errorf("%w: node %d references unknown prerequisite %d",
					util.ErrMalformedGraph, nodes[i].ID, prereqID)
			}
		}
	}

	color := make(map[uint]int, len(nodes))
	var visit func(id uint) error
	visit = func(id uint) error {
		switch color[id] {
		case colorGray:
			return fmt.Errorf("%w: prerequisite cycle through node %d", util.ErrMalformedGraph, id)
		case colorBlack:
			return nil
		}
		color[id] = colorGray
		for _, prereqID := range byID[id].Prerequisites {
			if err := visit(prereqID); err != nil {
				return err
			}
		}
		color[id] = colorBlack
		return nil
	}

	for i := range nodes {
		if err := visit(nodes[i].ID); err != nil {
			return err
		}
	}
	return nil
}
