package dbmodels

import "github.com/pkg/errors"

type JobPosition struct {
	BaseModel
	Name         string      `gorm:"type:varchar(255)"`
	DepartmentID string      `gorm:"type:varchar(36);index"`
	Department   *Department `gorm:"foreignKey:DepartmentID"`
	ManagerID    *string     `gorm:"type:varchar(36)"`
	Manager      *User       `gorm:"foreignKey:ManagerID"`
}

func (j JobPosition) Validate() error {
	if j.DepartmentID == "" {
		return errors.New("position must belong to a department")
	}
	if j.Name == "" {
		return errors.New("position name is required")
	}
	return nil
}
