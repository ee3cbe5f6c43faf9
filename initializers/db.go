package initializers

import (
	"bpm-backend/config"
	"bpm-backend/db"
	bpmstore "bpm-backend/lib/bpm-store"
	"bpm-backend/lib/bpm-store/memstore"

	log "github.com/sirupsen/logrus"
)

// Repo хранилище процессов, postgres или память
var Repo bpmstore.Provider

func InitDBConnection() {
	if config.Conf.Database.InMemory {
		log.Warn("используется хранилище в памяти, данные не сохраняются между запусками")
		Repo = memstore.New()
		db.InitPreload(Repo.Stores().Directory)
		return
	}
	err := db.Connect(config.Conf.Database.Host, config.Conf.Database.Port, config.Conf.Database.Name,
		config.Conf.Database.User, config.Conf.Database.Password, *config.Conf.Database.DebugMode, *config.Conf.Database.MigrateOnStart)
	if err != nil {
		panic(err.Error())
	}
	Repo = bpmstore.NewInstance(db.DB)
	db.InitPreload(Repo.Stores().Directory)
}
