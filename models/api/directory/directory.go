package directoryapimodels

import (
	"bpm-backend/models"
	dbmodels "bpm-backend/models/db"
	"strings"

	"github.com/pkg/errors"
)

type DepartmentData struct {
	Name        string  `json:"name"`
	ParentID    *string `json:"parent_id"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phone_number"`
	Color       string  `json:"color"`
}

func (d DepartmentData) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("department name is required")
	}
	return nil
}

type DepartmentView struct {
	DepartmentData
	ID string `json:"id"`
}

func DepartmentConvert(rec dbmodels.Department) DepartmentView {
	return DepartmentView{
		DepartmentData: DepartmentData{
			Name:        rec.Name,
			ParentID:    rec.ParentID,
			Email:       rec.Email,
			PhoneNumber: rec.PhoneNumber,
			Color:       rec.Color,
		},
		ID: rec.ID,
	}
}

type PositionData struct {
	Name         string  `json:"name"`
	DepartmentID string  `json:"department_id"`
	ManagerID    *string `json:"manager_id"`
}

func (p PositionData) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("position name is required")
	}
	if p.DepartmentID == "" {
		return errors.New("department id is required")
	}
	return nil
}

type PositionView struct {
	PositionData
	ID             string `json:"id"`
	DepartmentName string `json:"department_name"`
	ManagerName    string `json:"manager_name"`
}

func PositionConvert(rec dbmodels.JobPosition) PositionView {
	result := PositionView{
		PositionData: PositionData{
			Name:         rec.Name,
			DepartmentID: rec.DepartmentID,
			ManagerID:    rec.ManagerID,
		},
		ID: rec.ID,
	}
	if rec.Department != nil {
		result.DepartmentName = rec.Department.Name
	}
	if rec.Manager != nil {
		result.ManagerName = rec.Manager.GetFullName()
	}
	return result
}

type UserData struct {
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Role      models.UserRole `json:"role"`
	IsActive  bool            `json:"is_active"`
}

func (u UserData) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("email is required")
	}
	if !u.Role.IsValid() {
		return errors.Errorf("unknown role %v", u.Role)
	}
	return nil
}

type UserView struct {
	UserData
	ID          string   `json:"id"`
	PositionIDs []string `json:"position_ids"`
}

func UserConvert(rec dbmodels.User, positionIDs []string) UserView {
	if positionIDs == nil {
		positionIDs = []string{}
	}
	return UserView{
		UserData: UserData{
			Email:     rec.Email,
			FirstName: rec.FirstName,
			LastName:  rec.LastName,
			Role:      rec.Role,
			IsActive:  rec.IsActive,
		},
		ID:          rec.ID,
		PositionIDs: positionIDs,
	}
}

type UserPositions struct {
	PositionIDs []string `json:"position_ids"`
}

func (u UserPositions) Validate() error {
	for _, id := range u.PositionIDs {
		if id == "" {
			return errors.New("empty position id")
		}
	}
	return nil
}
