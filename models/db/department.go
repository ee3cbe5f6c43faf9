package dbmodels

import "github.com/pkg/errors"

type Department struct {
	BaseModel
	Name        string  `gorm:"type:varchar(255)"`
	ParentID    *string `gorm:"type:varchar(36);index"`
	Email       string  `gorm:"type:varchar(255)"`
	PhoneNumber string  `gorm:"type:varchar(30)"`
	Color       string  `gorm:"type:varchar(16)"`
}

func (d Department) Validate() error {
	if d.Name == "" {
		return errors.New("department name is required")
	}
	if d.ParentID != nil && *d.ParentID == d.ID && d.ID != "" {
		return errors.New("department cannot be its own parent")
	}
	return nil
}
