package service

import (
	"testing"

	"levelup_backend/internal/model"
	"levelup_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func graphNode(id uint, prereqs ...uint) model.SkillNode {
	n := model.SkillNode{Title: "node"}
	n.ID = id
	if len(prereqs) > 0 {
		n.Prerequisites = datatypes.NewJSONSlice(prereqs)
	}
	return n
}

func TestUnlockableRootNode(t *testing.T) {
	root := graphNode(1)
	assert.True(t, Unlockable(&root, map[uint]bool{}))
}

func TestUnlockableWithPrerequisites(t *testing.T) {
	node := graphNode(3, 1, 2)

	assert.False(t, Unlockable(&node, map[uint]bool{}))
	assert.False(t, Unlockable(&node, map[uint]bool{1: true}))
	assert.True(t, Unlockable(&node, map[uint]bool{1: true, 2: true}))
}

func TestMissingPrerequisites(t *testing.T) {
	node := graphNode(3, 1, 2)

	assert.Equal(t, []uint{1, 2}, MissingPrerequisites(&node, map[uint]bool{}))
	assert.Equal(t, []uint{2}, MissingPrerequisites(&node, map[uint]bool{1: true}))
	assert.Nil(t, MissingPrerequisites(&node, map[uint]bool{1: true, 2: true}))
}

func TestValidateTreeAcceptsDAG(t *testing.T) {
	nodes := []model.SkillNode{
		graphNode(1),
		graphNode(2, 1),
		graphNode(3, 1),
		graphNode(4, 2, 3), // 菱形依赖是合法的
	}
	assert.NoError(t, ValidateTree(nodes))
}

func TestValidateTreeRejectsDanglingReference(t *testing.T) {
	nodes := []model.SkillNode{
		graphNode(1),
		graphNode(2, 99),
	}
	err := ValidateTree(nodes)
	assert.ErrorIs(t, err, util.ErrMalformedGraph)
}

func TestValidateTreeRejectsCycle(t *testing.T) {
	nodes := []model.SkillNode{
		graphNode(1, 3),
		graphNode(2, 1),
		graphNode(3, 2),
	}
	err := ValidateTree(nodes)
	assert.ErrorIs(t, err, util.ErrMalformedGraph)
}

func TestValidateTreeRejectsSelfLoop(t *testing.T) {
	nodes := []model.SkillNode{graphNode(1, 1)}
	err := ValidateTree(nodes)
	assert.ErrorIs(t, err, util.ErrMalformedGraph)
}

func TestValidateTreeEmpty(t *testing.T) {
	assert.NoError(t, ValidateTree(nil))
}
