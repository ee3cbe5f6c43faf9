package db

import (
	"bpm-backend/config"
	directorystore "bpm-backend/lib/directory/store"
	"bpm-backend/models"
	dbmodels "bpm-backend/models/db"

	log "github.com/sirupsen/logrus"
)

func InitPreload(dir directorystore.Provider) {
	addSuperAdmin(dir)
}

func addSuperAdmin(dir directorystore.Provider) {
	if config.Conf.Admin.Email == "" {
		log.Warn("суперадмин не добавлен, отсутвует настройка ADMIN_EMAIL")
		return
	}
	existedRec, err := dir.GetUserByEmail(config.Conf.Admin.Email)
	if err != nil {
		log.WithError(err).Error("ошибка добавления суперадмина")
		return
	}
	if existedRec != nil {
		return
	}
	rec := dbmodels.User{
		Email:     config.Conf.Admin.Email,
		FirstName: config.Conf.Admin.FirstName,
		LastName:  config.Conf.Admin.LastName,
		Role:      models.UserRoleSuperAdmin,
		IsActive:  true,
	}
	id, err := dir.SaveUser(rec)
	if err != nil {
		log.WithError(err).Error("ошибка добавления суперадмина")
		return
	}
	log.WithField("user_id", id).Info("добавлен суперадмин")
}
