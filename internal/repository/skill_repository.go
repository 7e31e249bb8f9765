package repository

import (
	"levelup_backend/internal/model"

	"gorm.io/gorm"
)

type SkillRepository struct {
	DB *gorm.DB
}

func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{DB: db}
}

func (r *SkillRepository) FindNodeByID(id uint) (*model.SkillNode, error) {
	var node model.SkillNode
	err := r.DB.First(&node, id).Error
	return &node, err
}

func (r *SkillRepository) FindTreeByPathID(pathID uint) (*model.SkillTree, error) {
	var tree model.SkillTree
	err := r.DB.Preload("Nodes").Where("path_id = ?", pathID).First(&tree).Error
	return &tree, err
}

func (r *SkillRepository) FindTreeByID(id uint) (*model.SkillTree, error) {
	var tree model.SkillTree
	err := r.DB.Preload("Nodes").First(&tree, id).Error
	return &tree, err
}

// TreeNodes 返回节点所属整棵树的全部节点，用于前置校验
func (r *SkillRepository) TreeNodes(treeID uint) ([]model.SkillNode, error) {
	var nodes []model.SkillNode
	err := r.DB.Where("skill_tree_id = ?", treeID).Find(&nodes).Error
	return nodes, err
}

func (r *SkillRepository) CreateTree(tree *model.SkillTree) error {
	return r.DB.Create(tree).Error
}

func (r *SkillRepository) CreateNode(node *model.SkillNode) error {
	return r.DB.Create(node).Error
}

func (r *SkillRepository) UpdateNode(node *model.SkillNode) error {
	return r.DB.Save(node).Error
}
