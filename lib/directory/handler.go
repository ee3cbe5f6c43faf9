package directoryhandler

import (
	bpmstore "bpm-backend/lib/bpm-store"
	directorystore "bpm-backend/lib/directory/store"
	"bpm-backend/lib/rbac"
	bpmerrors "bpm-backend/lib/utils/bpm-errors"
	initchecker "bpm-backend/lib/utils/init-checker"
	"bpm-backend/models"
	directoryapimodels "bpm-backend/models/api/directory"
	dbmodels "bpm-backend/models/db"
	"slices"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	ListUsers(actorID string) ([]directoryapimodels.UserView, error)
	GetUser(actorID, id string) (directoryapimodels.UserView, error)
	CreateUser(actorID string, data directoryapimodels.UserData) (id string, err error)
	UpdateUser(actorID, id string, data directoryapimodels.UserData) error
	SetUserPositions(actorID, userID string, data directoryapimodels.UserPositions) error

	ListDepartments(actorID string) ([]directoryapimodels.DepartmentView, error)
	CreateDepartment(actorID string, data directoryapimodels.DepartmentData) (id string, err error)
	UpdateDepartment(actorID, id string, data directoryapimodels.DepartmentData) error

	ListPositions(actorID string) ([]directoryapimodels.PositionView, error)
	CreatePosition(actorID string, data directoryapimodels.PositionData) (id string, err error)
	UpdatePosition(actorID, id string, data directoryapimodels.PositionData) error
}

var Instance Provider

func NewHandler(repo bpmstore.Provider) {
	initchecker.CheckInit("repo", repo)
	Instance = NewInstance(repo)
}

func NewInstance(repo bpmstore.Provider) Provider {
	return impl{
		repo: repo,
	}
}

type impl struct {
	repo bpmstore.Provider
}

// LoadActor пользователь, выполняющий действие; роль берется из справочника, а не из токена
func LoadActor(dir directorystore.Provider, actorID string) (*dbmodels.User, error) {
	if actorID == "" {
		return nil, bpmerrors.Unauthorized("Unauthorized")
	}
	user, err := dir.GetUser(actorID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения пользователя")
	}
	if user == nil || !user.IsActive || !user.Role.IsValid() {
		return nil, bpmerrors.Unauthorized("Unauthorized")
	}
	return user, nil
}

// Recipients активные пользователи из ids без exclude, в порядке ids
func Recipients(dir directorystore.Provider, ids []string, exclude ...string) ([]models.NotifyRecipient, error) {
	filtered := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(exclude, id) || slices.Contains(filtered, id) {
			continue
		}
		filtered = append(filtered, id)
	}
	if len(filtered) == 0 {
		return []models.NotifyRecipient{}, nil
	}
	users, err := dir.ListUsers(filtered)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения получателей уведомления")
	}
	byID := make(map[string]dbmodels.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	result := make([]models.NotifyRecipient, 0, len(filtered))
	for _, id := range filtered {
		user, ok := byID[id]
		if !ok || !user.IsActive {
			continue
		}
		result = append(result, user.ToRecipient())
	}
	return result, nil
}

func (i impl) authorize(dir directorystore.Provider, actorID string, permission models.Permission) (*dbmodels.User, error) {
	actor, err := LoadActor(dir, actorID)
	if err != nil {
		return nil, err
	}
	if !rbac.HasPermission(actor.Role, permission) {
		return nil, bpmerrors.Forbidden("Forbidden")
	}
	return actor, nil
}

func (i impl) ListUsers(actorID string) ([]directoryapimodels.UserView, error) {
	dir := i.repo.Stores().Directory
	_, err := i.authorize(dir, actorID, models.UsersRead)
	if err != nil {
		return nil, err
	}
	list, err := dir.ListUsers(nil)
	if err != nil {
		return nil, err
	}
	result := make([]directoryapimodels.UserView, 0, len(list))
	for _, rec := range list {
		positionIDs, err := dir.PositionIDsOfUser(rec.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, directoryapimodels.UserConvert(rec, positionIDs))
	}
	return result, nil
}

func (i impl) GetUser(actorID, id string) (directoryapimodels.UserView, error) {
	dir := i.repo.Stores().Directory
	_, err := i.authorize(dir, actorID, models.UsersRead)
	if err != nil {
		return directoryapimodels.UserView{}, err
	}
	rec, err := dir.GetUser(id)
	if err != nil {
		return directoryapimodels.UserView{}, err
	}
	if rec == nil {
		return directoryapimodels.UserView{}, bpmerrors.NotFound("User not found")
	}
	positionIDs, err := dir.PositionIDsOfUser(id)
	if err != nil {
		return directoryapimodels.UserView{}, err
	}
	return directoryapimodels.UserConvert(*rec, positionIDs), nil
}

func (i impl) CreateUser(actorID string, data directoryapimodels.UserData) (id string, err error) {
	dir := i.repo.Stores().Directory
	actor, err := i.authorize(dir, actorID, models.UsersCreate)
	if err != nil {
		return "", err
	}
	if err = data.Validate(); err != nil {
		return "", bpmerrors.Validation("%s", err.Error())
	}
	if err = canGrantRole(actor, data.Role); err != nil {
		return "", err
	}
	existing, err := dir.GetUserByEmail(data.Email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", bpmerrors.Validation("User with email %s already exists", data.Email)
	}
	rec := dbmodels.User{
		Email:     strings.TrimSpace(data.Email),
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Role:      data.Role,
		IsActive:  data.IsActive,
	}
	id, err = dir.SaveUser(rec)
	if err != nil {
		return "", errors.Wrap(err, "ошибка создания пользователя")
	}
	log.WithField("actor_id", actorID).
		WithField("user_id", id).
		WithField("role", rec.Role).
		Info("создан пользователь")
	return id, nil
}

func (i impl) UpdateUser(actorID, id string, data directoryapimodels.UserData) error {
	dir := i.repo.Stores().Directory
	actor, err := i.authorize(dir, actorID, models.UsersUpdate)
	if err != nil {
		return err
	}
	if err = data.Validate(); err != nil {
		return bpmerrors.Validation("%s", err.Error())
	}
	rec, err := dir.GetUser(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return bpmerrors.NotFound("User not found")
	}
	if rec.Role != data.Role || rec.Role.IsSuperAdmin() {
		if err = canGrantRole(actor, data.Role); err != nil {
			return err
		}
		if err = canGrantRole(actor, rec.Role); err != nil {
			return err
		}
	}
	sameEmail, err := dir.GetUserByEmail(data.Email)
	if err != nil {
		return err
	}
	if sameEmail != nil && sameEmail.ID != id {
		return bpmerrors.Validation("User with email %s already exists", data.Email)
	}
	rec.Email = strings.TrimSpace(data.Email)
	rec.FirstName = data.FirstName
	rec.LastName = data.LastName
	rec.Role = data.Role
	rec.IsActive = data.IsActive
	_, err = dir.SaveUser(*rec)
	if err != nil {
		return errors.Wrap(err, "ошибка обновления пользователя")
	}
	log.WithField("actor_id", actorID).
		WithField("user_id", id).
		Info("обновлен пользователь")
	return nil
}

// canGrantRole роль SUPER_ADMIN выдает и снимает только SUPER_ADMIN
func canGrantRole(actor *dbmodels.User, role models.UserRole) error {
	if role.IsSuperAdmin() && !actor.Role.IsSuperAdmin() {
		return bpmerrors.Forbidden("Forbidden")
	}
	return nil
}

func (i impl) SetUserPositions(actorID, userID string, data directoryapimodels.UserPositions) error {
	return i.repo.Transaction(func(tx bpmstore.Stores) error {
		_, err := i.authorize(tx.Directory, actorID, models.UsersUpdate)
		if err != nil {
			return err
		}
		if err = data.Validate(); err != nil {
			return bpmerrors.Validation("%s", err.Error())
		}
		user, err := tx.Directory.GetUser(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return bpmerrors.NotFound("User not found")
		}
		positionIDs := distinct(data.PositionIDs)
		existing, err := tx.Directory.ExistingPositionIDs(positionIDs)
		if err != nil {
			return err
		}
		if missing := difference(positionIDs, existing); len(missing) > 0 {
			return bpmerrors.Validation("Unknown positions: %s", strings.Join(missing, ", "))
		}
		err = tx.Directory.SetUserPositions(userID, positionIDs)
		if err != nil {
			return errors.Wrap(err, "ошибка сохранения должностей пользователя")
		}
		log.WithField("actor_id", actorID).
			WithField("user_id", userID).
			WithField("positions", positionIDs).
			Info("обновлены должности пользователя")
		return nil
	})
}

func (i impl) ListDepartments(actorID string) ([]directoryapimodels.DepartmentView, error) {
	dir := i.repo.Stores().Directory
	_, err := i.authorize(dir, actorID, models.DepartmentsRead)
	if err != nil {
		return nil, err
	}
	list, err := dir.ListDepartments()
	if err != nil {
		return nil, err
	}
	result := make([]directoryapimodels.DepartmentView, 0, len(list))
	for _, rec := range list {
		result = append(result, directoryapimodels.DepartmentConvert(rec))
	}
	return result, nil
}

func (i impl) CreateDepartment(actorID string, data directoryapimodels.DepartmentData) (id string, err error) {
	err = i.repo.Transaction(func(tx bpmstore.Stores) error {
		_, err := i.authorize(tx.Directory, actorID, models.DepartmentsCreate)
		if err != nil {
			return err
		}
		if err = data.Validate(); err != nil {
			return bpmerrors.Validation("%s", err.Error())
		}
		if err = checkParent(tx.Directory, "", data.ParentID); err != nil {
			return err
		}
		id, err = tx.Directory.SaveDepartment(departmentRec(dbmodels.Department{}, data))
		if err != nil {
			return errors.Wrap(err, "ошибка создания подразделения")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	log.WithField("actor_id", actorID).
		WithField("department_id", id).
		Info("создано подразделение")
	return id, nil
}

func (i impl) UpdateDepartment(actorID, id string, data directoryapimodels.DepartmentData) error {
	err := i.repo.Transaction(func(tx bpmstore.Stores) error {
		_, err := i.authorize(tx.Directory, actorID, models.DepartmentsUpdate)
		if err != nil {
			return err
		}
		if err = data.Validate(); err != nil {
			return bpmerrors.Validation("%s", err.Error())
		}
		rec, err := tx.Directory.GetDepartment(id)
		if err != nil {
			return err
		}
		if rec == nil {
			return bpmerrors.NotFound("Department not found")
		}
		if err = checkParent(tx.Directory, id, data.ParentID); err != nil {
			return err
		}
		_, err = tx.Directory.SaveDepartment(departmentRec(*rec, data))
		if err != nil {
			return errors.Wrap(err, "ошибка обновления подразделения")
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.WithField("actor_id", actorID).
		WithField("department_id", id).
		Info("обновлено подразделение")
	return nil
}

func departmentRec(rec dbmodels.Department, data directoryapimodels.DepartmentData) dbmodels.Department {
	rec.Name = strings.TrimSpace(data.Name)
	rec.ParentID = data.ParentID
	if rec.ParentID != nil && *rec.ParentID == "" {
		rec.ParentID = nil
	}
	rec.Email = data.Email
	rec.PhoneNumber = data.PhoneNumber
	rec.Color = data.Color
	return rec
}

// checkParent родитель существует и подразделение id не становится собственным предком
func checkParent(dir directorystore.Provider, id string, parentID *string) error {
	if parentID == nil || *parentID == "" {
		return nil
	}
	visited := map[string]bool{}
	current := *parentID
	for current != "" {
		if current == id {
			return bpmerrors.Validation("Department cannot be its own ancestor")
		}
		if visited[current] {
			return bpmerrors.Validation("Department hierarchy contains a cycle")
		}
		visited[current] = true
		parent, err := dir.GetDepartment(current)
		if err != nil {
			return err
		}
		if parent == nil {
			if current == *parentID {
				return bpmerrors.Validation("Parent department not found")
			}
			return nil
		}
		if parent.ParentID == nil {
			return nil
		}
		current = *parent.ParentID
	}
	return nil
}

func (i impl) ListPositions(actorID string) ([]directoryapimodels.PositionView, error) {
	dir := i.repo.Stores().Directory
	_, err := i.authorize(dir, actorID, models.PositionsRead)
	if err != nil {
		return nil, err
	}
	list, err := dir.ListPositions()
	if err != nil {
		return nil, err
	}
	result := make([]directoryapimodels.PositionView, 0, len(list))
	for _, rec := range list {
		result = append(result, directoryapimodels.PositionConvert(rec))
	}
	return result, nil
}

func (i impl) CreatePosition(actorID string, data directoryapimodels.PositionData) (id string, err error) {
	err = i.repo.Transaction(func(tx bpmstore.Stores) error {
		_, err := i.authorize(tx.Directory, actorID, models.PositionsCreate)
		if err != nil {
			return err
		}
		if err = checkPosition(tx.Directory, data); err != nil {
			return err
		}
		id, err = tx.Directory.SavePosition(positionRec(dbmodels.JobPosition{}, data))
		if err != nil {
			return errors.Wrap(err, "ошибка создания должности")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	log.WithField("actor_id", actorID).
		WithField("position_id", id).
		Info("создана должность")
	return id, nil
}

func (i impl) UpdatePosition(actorID, id string, data directoryapimodels.PositionData) error {
	err := i.repo.Transaction(func(tx bpmstore.Stores) error {
		_, err := i.authorize(tx.Directory, actorID, models.PositionsUpdate)
		if err != nil {
			return err
		}
		rec, err := tx.Directory.GetPosition(id)
		if err != nil {
			return err
		}
		if rec == nil {
			return bpmerrors.NotFound("Position not found")
		}
		if err = checkPosition(tx.Directory, data); err != nil {
			return err
		}
		_, err = tx.Directory.SavePosition(positionRec(*rec, data))
		if err != nil {
			return errors.Wrap(err, "ошибка обновления должности")
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.WithField("actor_id", actorID).
		WithField("position_id", id).
		Info("обновлена должность")
	return nil
}

func checkPosition(dir directorystore.Provider, data directoryapimodels.PositionData) error {
	if err := data.Validate(); err != nil {
		return bpmerrors.Validation("%s", err.Error())
	}
	department, err := dir.GetDepartment(data.DepartmentID)
	if err != nil {
		return err
	}
	if department == nil {
		return bpmerrors.Validation("Department not found")
	}
	if data.ManagerID != nil && *data.ManagerID != "" {
		manager, err := dir.GetUser(*data.ManagerID)
		if err != nil {
			return err
		}
		if manager == nil {
			return bpmerrors.Validation("Manager not found")
		}
	}
	return nil
}

func positionRec(rec dbmodels.JobPosition, data directoryapimodels.PositionData) dbmodels.JobPosition {
	rec.Name = strings.TrimSpace(data.Name)
	rec.DepartmentID = data.DepartmentID
	rec.ManagerID = data.ManagerID
	if rec.ManagerID != nil && *rec.ManagerID == "" {
		rec.ManagerID = nil
	}
	rec.Department = nil
	rec.Manager = nil
	return rec
}

func distinct(list []string) []string {
	result := make([]string, 0, len(list))
	for _, id := range list {
		if !slices.Contains(result, id) {
			result = append(result, id)
		}
	}
	return result
}

// difference элементы list, которых нет в present
func difference(list, present []string) []string {
	result := []string{}
	for _, id := range list {
		if !slices.Contains(present, id) {
			result = append(result, id)
		}
	}
	return result
}
