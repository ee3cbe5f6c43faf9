package fiberlog

import "github.com/sirupsen/logrus"

// Config настройки middleware логирования запросов
type Config struct {
	Logger *logrus.Logger
	Tags   []string
	// SkipPaths пути, запросы к которым не логируются
	SkipPaths []string
}

var ConfigDefault = Config{
	Tags: []string{
		TagStatus,
		TagLatency,
		TagMethod,
		TagPath,
	},
}
