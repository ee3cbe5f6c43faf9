package memstore

import (
	"bpm-backend/models"
	dbmodels "bpm-backend/models/db"
	"strings"
)

// SeedDepartment, SeedPosition и SeedUser наполняют справочник для тестов и локального запуска

func (d *DB) SeedDepartment(name string, parentID *string) string {
	id, err := d.Stores().Directory.SaveDepartment(dbmodels.Department{Name: name, ParentID: parentID})
	must(err)
	return id
}

func (d *DB) SeedPosition(name, departmentID string, managerID *string) string {
	id, err := d.Stores().Directory.SavePosition(dbmodels.JobPosition{
		Name:         name,
		DepartmentID: departmentID,
		ManagerID:    managerID,
	})
	must(err)
	return id
}

func (d *DB) SeedUser(name string, role models.UserRole, positionIDs ...string) string {
	stores := d.Stores()
	id, err := stores.Directory.SaveUser(dbmodels.User{
		Email:     strings.ToLower(name) + "@example.com",
		FirstName: name,
		Role:      role,
		IsActive:  true,
	})
	must(err)
	must(stores.Directory.SetUserPositions(id, positionIDs))
	return id
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
