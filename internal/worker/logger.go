package worker

import (
	"fmt"

	"github.com/prepwise-next/internal/logger"
)

// asynqLogger 将 asynq 内部日志转发到 zap
type asynqLogger struct{}

func newAsynqLogger() asynqLogger {
	return asynqLogger{}
}

func (asynqLogger) Debug(args ...interface{}) {
	logger.Debugw("asynq", "detail", fmt.Sprint(args...))
}

func (asynqLogger) Info(args ...interface{}) {
	logger.Infow("asynq", "detail", fmt.Sprint(args...))
}

func (asynqLogger) Warn(args ...interface{}) {
	logger.Warnw("asynq", "detail", fmt.Sprint(args...))
}

func (asynqLogger) Error(args ...interface{}) {
	logger.Errorw("asynq", "detail", fmt.Sprint(args...))
}

func (asynqLogger) Fatal(args ...interface{}) {
	logger.S().Fatalw("asynq", "detail", fmt.Sprint(args...))
}
