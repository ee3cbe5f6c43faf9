package directorystore

import (
	dbmodels "bpm-backend/models/db"
	"sort"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	GetUser(id string) (*dbmodels.User, error)
	GetUserByEmail(email string) (*dbmodels.User, error)
	ListUsers(ids []string) ([]dbmodels.User, error)
	SaveUser(rec dbmodels.User) (id string, err error)
	SetUserPositions(userID string, positionIDs []string) error
	PositionIDsOfUser(userID string) ([]string, error)
	UserIDsByPositions(positionIDs []string) ([]string, error)
	DepartmentIDsOfUser(userID string) ([]string, error)
	PositionsByDepartments(departmentIDs []string) ([]dbmodels.JobPosition, error)
	GetDepartment(id string) (*dbmodels.Department, error)
	ListDepartments() ([]dbmodels.Department, error)
	SaveDepartment(rec dbmodels.Department) (id string, err error)
	ExistingDepartmentIDs(ids []string) ([]string, error)
	GetPosition(id string) (*dbmodels.JobPosition, error)
	ListPositions() ([]dbmodels.JobPosition, error)
	SavePosition(rec dbmodels.JobPosition) (id string, err error)
	ExistingPositionIDs(ids []string) ([]string, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) GetUser(id string) (*dbmodels.User, error) {
	rec := dbmodels.User{}
	err := i.db.
		Where("id = ?", id).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) GetUserByEmail(email string) (*dbmodels.User, error) {
	rec := dbmodels.User{}
	err := i.db.
		Where("lower(email) = lower(?)", email).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// ListUsers при пустом ids возвращает всех пользователей
func (i impl) ListUsers(ids []string) ([]dbmodels.User, error) {
	list := []dbmodels.User{}
	tx := i.db.Order("last_name, first_name")
	if ids != nil {
		if len(ids) == 0 {
			return list, nil
		}
		tx = tx.Where("id in (?)", ids)
	}
	err := tx.Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) SaveUser(rec dbmodels.User) (id string, err error) {
	rec.InitID()
	err = i.db.
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) SetUserPositions(userID string, positionIDs []string) error {
	err := i.db.
		Where("user_id = ?", userID).
		Delete(&dbmodels.UserPosition{}).
		Error
	if err != nil {
		return errors.Wrap(err, "ошибка удаления должностей пользователя")
	}
	if len(positionIDs) == 0 {
		return nil
	}
	rows := make([]dbmodels.UserPosition, 0, len(positionIDs))
	for _, positionID := range positionIDs {
		rows = append(rows, dbmodels.UserPosition{UserID: userID, PositionID: positionID})
	}
	return i.db.Create(&rows).Error
}

func (i impl) PositionIDsOfUser(userID string) ([]string, error) {
	list := []string{}
	err := i.db.
		Model(&dbmodels.UserPosition{}).
		Where("user_id = ?", userID).
		Order("position_id").
		Pluck("position_id", &list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) UserIDsByPositions(positionIDs []string) ([]string, error) {
	list := []string{}
	if len(positionIDs) == 0 {
		return list, nil
	}
	err := i.db.
		Model(&dbmodels.UserPosition{}).
		Distinct().
		Where("position_id in (?)", positionIDs).
		Pluck("user_id", &list).
		Error
	if err != nil {
		return nil, err
	}
	sort.Strings(list)
	return list, nil
}

func (i impl) DepartmentIDsOfUser(userID string) ([]string, error) {
	list := []string{}
	err := i.db.
		Model(&dbmodels.JobPosition{}).
		Distinct().
		Joins("join user_positions on user_positions.position_id = job_positions.id").
		Where("user_positions.user_id = ?", userID).
		Pluck("job_positions.department_id", &list).
		Error
	if err != nil {
		return nil, err
	}
	sort.Strings(list)
	return list, nil
}

func (i impl) PositionsByDepartments(departmentIDs []string) ([]dbmodels.JobPosition, error) {
	list := []dbmodels.JobPosition{}
	if len(departmentIDs) == 0 {
		return list, nil
	}
	err := i.db.
		Where("department_id in (?)", departmentIDs).
		Order("name").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) GetDepartment(id string) (*dbmodels.Department, error) {
	rec := dbmodels.Department{}
	err := i.db.
		Where("id = ?", id).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) ListDepartments() ([]dbmodels.Department, error) {
	list := []dbmodels.Department{}
	err := i.db.
		Order("name").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) SaveDepartment(rec dbmodels.Department) (id string, err error) {
	rec.InitID()
	err = i.db.
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) ExistingDepartmentIDs(ids []string) ([]string, error) {
	list := []string{}
	if len(ids) == 0 {
		return list, nil
	}
	err := i.db.
		Model(&dbmodels.Department{}).
		Where("id in (?)", ids).
		Pluck("id", &list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) GetPosition(id string) (*dbmodels.JobPosition, error) {
	rec := dbmodels.JobPosition{}
	err := i.db.
		Where("id = ?", id).
		Preload("Department").
		Preload("Manager").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) ListPositions() ([]dbmodels.JobPosition, error) {
	list := []dbmodels.JobPosition{}
	err := i.db.
		Preload("Department").
		Preload("Manager").
		Order("name").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) SavePosition(rec dbmodels.JobPosition) (id string, err error) {
	rec.InitID()
	err = i.db.
		Omit("Department", "Manager").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) ExistingPositionIDs(ids []string) ([]string, error) {
	list := []string{}
	if len(ids) == 0 {
		return list, nil
	}
	err := i.db.
		Model(&dbmodels.JobPosition{}).
		Where("id in (?)", ids).
		Pluck("id", &list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
