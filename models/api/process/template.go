package processapimodels

import (
	"bpm-backend/models"
	dbmodels "bpm-backend/models/db"
	"strings"

	"github.com/pkg/errors"
)

type RuleData struct {
	PositionIDs       []string `json:"position_ids"`
	SameDepartment    bool     `json:"same_department"`
	DepartmentManager bool     `json:"department_manager"`
}

func (r RuleData) ToRuleSet() models.RuleSet {
	positions := make([]string, 0, len(r.PositionIDs))
	seen := map[string]bool{}
	for _, id := range r.PositionIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		positions = append(positions, id)
	}
	return models.RuleSet{
		PositionIDs:       positions,
		SameDepartment:    r.SameDepartment,
		DepartmentManager: r.DepartmentManager,
	}
}

func RuleConvert(rule models.RuleSet) RuleData {
	positions := rule.PositionIDs
	if positions == nil {
		positions = []string{}
	}
	return RuleData{
		PositionIDs:       positions,
		SameDepartment:    rule.SameDepartment,
		DepartmentManager: rule.DepartmentManager,
	}
}

type TaskTemplateData struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Order            int      `json:"order"`
	NeedFile         bool     `json:"need_file"`
	Mandatory        bool     `json:"mandatory"`
	Approver         RuleData `json:"approver"`
	NotifyOnStart    RuleData `json:"notify_on_start"`
	NotifyOnComplete RuleData `json:"notify_on_complete"`
}

func (t TaskTemplateData) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("task name is required")
	}
	if t.Order < 0 {
		return errors.New("task order must not be negative")
	}
	return nil
}

// ReferencedPositions все должности, на которые ссылаются правила задачи
func (t TaskTemplateData) ReferencedPositions() []string {
	result := []string{}
	result = append(result, t.Approver.PositionIDs...)
	result = append(result, t.NotifyOnStart.PositionIDs...)
	result = append(result, t.NotifyOnComplete.PositionIDs...)
	return result
}

type TemplateData struct {
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Icon               string             `json:"icon"`
	AllowedDepartments []string           `json:"allowed_departments"`
	Tasks              []TaskTemplateData `json:"tasks"`
}

func (t TemplateData) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("template name is required")
	}
	if len(t.Tasks) == 0 {
		return errors.New("template must contain at least one task")
	}
	for i, task := range t.Tasks {
		if err := task.Validate(); err != nil {
			return errors.Wrapf(err, "task #%d", i+1)
		}
	}
	return nil
}

type TaskTemplateView struct {
	TaskTemplateData
	ID       string `json:"id"`
	Revision int    `json:"revision"`
}

func TaskTemplateConvert(rec dbmodels.ProcessTaskTemplate) TaskTemplateView {
	return TaskTemplateView{
		TaskTemplateData: TaskTemplateData{
			Name:             rec.Name,
			Description:      rec.Description,
			Order:            rec.Order,
			NeedFile:         rec.NeedFile,
			Mandatory:        rec.Mandatory,
			Approver:         RuleConvert(rec.Rule(models.RuleKindApprover)),
			NotifyOnStart:    RuleConvert(rec.Rule(models.RuleKindNotifyOnStart)),
			NotifyOnComplete: RuleConvert(rec.Rule(models.RuleKindNotifyOnComplete)),
		},
		ID:       rec.ID,
		Revision: rec.Revision,
	}
}

type TemplateView struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Icon               string             `json:"icon"`
	Revision           int                `json:"revision"`
	AllowedDepartments []string           `json:"allowed_departments"`
	Tasks              []TaskTemplateView `json:"tasks"`
}

func TemplateConvert(rec dbmodels.ProcessTemplate) TemplateView {
	tasks := rec.LiveTasks()
	result := TemplateView{
		ID:                 rec.ID,
		Name:               rec.Name,
		Description:        rec.Description,
		Icon:               rec.Icon,
		Revision:           rec.Revision,
		AllowedDepartments: rec.AllowedDepartmentIDs(),
		Tasks:              make([]TaskTemplateView, 0, len(tasks)),
	}
	for _, task := range tasks {
		result.Tasks = append(result.Tasks, TaskTemplateConvert(task))
	}
	return result
}
