package db

import (
	dbmodels "bpm-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func AutoMigrateDB() error {
	log.Info("Запуск миграций")
	tables := []struct {
		name  string
		model any
	}{
		{"User", &dbmodels.User{}},
		{"Department", &dbmodels.Department{}},
		{"JobPosition", &dbmodels.JobPosition{}},
		{"UserPosition", &dbmodels.UserPosition{}},
		{"ProcessTemplate", &dbmodels.ProcessTemplate{}},
		{"ProcessTemplateDepartment", &dbmodels.ProcessTemplateDepartment{}},
		{"ProcessTaskTemplate", &dbmodels.ProcessTaskTemplate{}},
		{"TaskRulePosition", &dbmodels.TaskRulePosition{}},
		{"ProcessInstance", &dbmodels.ProcessInstance{}},
		{"ProcessTaskAssignment", &dbmodels.ProcessTaskAssignment{}},
		{"TaskAssignee", &dbmodels.TaskAssignee{}},
		{"TaskAction", &dbmodels.TaskAction{}},
		{"PushData", &dbmodels.PushData{}},
	}
	for _, table := range tables {
		if err := DB.AutoMigrate(table.model); err != nil {
			return errors.Wrapf(err, "ошибка создания структуры %s", table.name)
		}
	}
	log.Info("Миграция прошла успешно")
	return nil
}
