package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. Production logs are JSON, development logs
// are text.
func New(appEnv, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if appEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// LogError logs err with the module/function it came from.
func LogError(log logrus.FieldLogger, module, funcName string, data any, err error) {
	fields := logrus.Fields{
		"module":   module,
		"funcName": funcName,
	}
	if data != nil {
		fields["data"] = data
	}
	log.WithFields(fields).Error(err.Error())
}
