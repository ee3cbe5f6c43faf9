package dbmodels

import (
	"bpm-backend/models"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type User struct {
	BaseModel
	Email     string          `gorm:"type:varchar(255);uniqueIndex"`
	FirstName string          `gorm:"type:varchar(150)"`
	LastName  string          `gorm:"type:varchar(150)"`
	Role      models.UserRole `gorm:"type:varchar(50)"`
	IsActive  bool
}

func (r User) GetFullName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", r.FirstName, r.LastName))
}

func (r User) ToRecipient() models.NotifyRecipient {
	return models.NotifyRecipient{
		UserID: r.ID,
		Email:  r.Email,
		Name:   r.GetFullName(),
	}
}

func (r User) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if !r.Role.IsValid() {
		return errors.Errorf("unknown role %v", r.Role)
	}
	return nil
}

// UserPosition связь пользователь - штатная должность
type UserPosition struct {
	UserID     string `gorm:"primaryKey;type:varchar(36)"`
	PositionID string `gorm:"primaryKey;type:varchar(36);index"`
}
