package assignmentresolver

import (
	directorystore "bpm-backend/lib/directory/store"
	"bpm-backend/models"
	"sort"

	"github.com/pkg/errors"
)

type Provider interface {
	// ResolvePositions пользователи, занимающие любую из должностей
	ResolvePositions(positionIDs []string) ([]string, error)
	// ResolveRule пользователи по правилу относительно пользователя, выполняющего действие
	ResolveRule(rule models.RuleSet, referenceUserID string) ([]string, error)
}

func NewInstance(directory directorystore.Provider, departmentRulesEnabled bool) Provider {
	return impl{
		directory:              directory,
		departmentRulesEnabled: departmentRulesEnabled,
	}
}

type impl struct {
	directory              directorystore.Provider
	departmentRulesEnabled bool
}

func (i impl) ResolvePositions(positionIDs []string) ([]string, error) {
	if len(positionIDs) == 0 {
		return []string{}, nil
	}
	userIDs, err := i.directory.UserIDsByPositions(positionIDs)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения пользователей по должностям")
	}
	return distinct(userIDs), nil
}

func (i impl) ResolveRule(rule models.RuleSet, referenceUserID string) ([]string, error) {
	result, err := i.ResolvePositions(rule.PositionIDs)
	if err != nil {
		return nil, err
	}
	if !i.departmentRulesEnabled || referenceUserID == "" || (!rule.SameDepartment && !rule.DepartmentManager) {
		return result, nil
	}
	departmentIDs, err := i.directory.DepartmentIDsOfUser(referenceUserID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения подразделений пользователя")
	}
	positions, err := i.directory.PositionsByDepartments(departmentIDs)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения должностей подразделений")
	}
	if rule.SameDepartment {
		positionIDs := make([]string, 0, len(positions))
		for _, position := range positions {
			positionIDs = append(positionIDs, position.ID)
		}
		colleagues, err := i.ResolvePositions(positionIDs)
		if err != nil {
			return nil, err
		}
		result = append(result, colleagues...)
	}
	if rule.DepartmentManager {
		for _, position := range positions {
			if position.ManagerID != nil && *position.ManagerID != "" {
				result = append(result, *position.ManagerID)
			}
		}
	}
	return distinct(result), nil
}

func distinct(list []string) []string {
	seen := make(map[string]bool, len(list))
	result := make([]string, 0, len(list))
	for _, id := range list {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}
