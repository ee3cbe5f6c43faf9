package dbmodels

import (
	"bpm-backend/models"
	"sort"

	"gorm.io/gorm"
)

type ProcessTemplate struct {
	BaseModel
	Name        string `gorm:"type:varchar(255)"`
	Description string
	Icon        string `gorm:"type:varchar(255)"`
	Revision    int    `gorm:"default:1"`
	CreatedByID string `gorm:"type:varchar(36)"`

	DeletedAt          gorm.DeletedAt              `gorm:"index"`
	AllowedDepartments []ProcessTemplateDepartment `gorm:"foreignKey:ProcessTemplateID"`
	Tasks              []ProcessTaskTemplate       `gorm:"foreignKey:ProcessTemplateID"`
}

// LiveTasks задачи текущей ревизии в порядке order
func (t ProcessTemplate) LiveTasks() []ProcessTaskTemplate {
	result := make([]ProcessTaskTemplate, 0, len(t.Tasks))
	for _, task := range t.Tasks {
		if task.Revision == t.Revision {
			result = append(result, task)
		}
	}
	SortTaskTemplates(result)
	return result
}

func (t ProcessTemplate) AllowedDepartmentIDs() []string {
	result := make([]string, 0, len(t.AllowedDepartments))
	for _, dep := range t.AllowedDepartments {
		result = append(result, dep.DepartmentID)
	}
	return result
}

type ProcessTemplateDepartment struct {
	ProcessTemplateID string `gorm:"primaryKey;type:varchar(36)"`
	DepartmentID      string `gorm:"primaryKey;type:varchar(36)"`
}

type ProcessTaskTemplate struct {
	BaseModel
	ProcessTemplateID string `gorm:"type:varchar(36);index:idx_task_tmpl_rev"`
	Revision          int    `gorm:"index:idx_task_tmpl_rev"`
	Name              string `gorm:"type:varchar(255)"`
	Description       string
	Order             int `gorm:"column:task_order"`
	NeedFile          bool
	Mandatory         bool

	ApproverSameDepartment    bool
	ApproverDepartmentManager bool
	StartSameDepartment       bool
	StartDepartmentManager    bool
	CompleteSameDepartment    bool
	CompleteDepartmentManager bool
	RulePositions             []TaskRulePosition `gorm:"foreignKey:TaskTemplateID"`
}

// Rule собирает набор правил заданного вида
func (t ProcessTaskTemplate) Rule(kind models.RuleKind) models.RuleSet {
	rule := models.RuleSet{PositionIDs: []string{}}
	for _, pos := range t.RulePositions {
		if pos.Kind == kind {
			rule.PositionIDs = append(rule.PositionIDs, pos.JobPositionID)
		}
	}
	switch kind {
	case models.RuleKindApprover:
		rule.SameDepartment = t.ApproverSameDepartment
		rule.DepartmentManager = t.ApproverDepartmentManager
	case models.RuleKindNotifyOnStart:
		rule.SameDepartment = t.StartSameDepartment
		rule.DepartmentManager = t.StartDepartmentManager
	case models.RuleKindNotifyOnComplete:
		rule.SameDepartment = t.CompleteSameDepartment
		rule.DepartmentManager = t.CompleteDepartmentManager
	}
	return rule
}

// SetRule записывает флаги и позиции правила в строку шаблона задачи
func (t *ProcessTaskTemplate) SetRule(kind models.RuleKind, rule models.RuleSet) {
	switch kind {
	case models.RuleKindApprover:
		t.ApproverSameDepartment = rule.SameDepartment
		t.ApproverDepartmentManager = rule.DepartmentManager
	case models.RuleKindNotifyOnStart:
		t.StartSameDepartment = rule.SameDepartment
		t.StartDepartmentManager = rule.DepartmentManager
	case models.RuleKindNotifyOnComplete:
		t.CompleteSameDepartment = rule.SameDepartment
		t.CompleteDepartmentManager = rule.DepartmentManager
	}
	for _, positionID := range rule.PositionIDs {
		t.RulePositions = append(t.RulePositions, TaskRulePosition{
			TaskTemplateID: t.ID,
			Kind:           kind,
			JobPositionID:  positionID,
		})
	}
}

type TaskRulePosition struct {
	TaskTemplateID string          `gorm:"primaryKey;type:varchar(36)"`
	Kind           models.RuleKind `gorm:"primaryKey;type:varchar(32)"`
	JobPositionID  string          `gorm:"primaryKey;type:varchar(36)"`
}

func SortTaskTemplates(list []ProcessTaskTemplate) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Order < list[j].Order
	})
}
