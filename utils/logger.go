package utils

import (
	"go.uber.org/zap"
)

// Logger is the process-wide structured logger. It is a no-op logger until
// InitLogger runs so packages can log from tests without setup.
var Logger = zap.NewNop()

func InitLogger(env string) error {
	var (
		l   *zap.Logger
		err error
	)
	if env == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}
