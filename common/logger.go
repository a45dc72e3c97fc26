package common

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap/zapcore"
)

// LogLevel 日志级别
type LogLevel string

// 日志级别
const (
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Warn  LogLevel = "warn"
	Error LogLevel = "error"
)

// 运行环境
const (
	EnvDevelopment = "dev"
	EnvProduction  = "prod"
)

func (p LogLevel) zapLevel() (zapcore.Level, bool) {
	switch p {
	case Debug:
		return zapcore.DebugLevel, true
	case Info:
		return zapcore.InfoLevel, true
	case Warn:
		return zapcore.WarnLevel, true
	case Error:
		return zapcore.ErrorLevel, true
	}
	return zapcore.InfoLevel, false
}

// Logger is the logger used by the package level log functions
type Logger interface {
	Debugf(format string, params ...interface{})
	Infof(format string, params ...interface{})
	Warnf(format string, params ...interface{})
	Errorf(format string, params ...interface{})

	DebugEnabled() bool
	InfoEnabled() bool
	WarnEnabled() bool
	ErrorEnabled() bool

	SetLevel(level LogLevel)
	Sync()
}

var (
	logger     Logger = NewZapLogger(&LogConfig{Env: EnvDevelopment, Level: string(Info)})
	loggerLock sync.Mutex
	loggerInit bool
)

// initLogger 使用配置初始化全局logger,只能初始化一次
func initLogger(conf *LogConfig) error {
	if conf == nil {
		return nil
	}
	loggerLock.Lock()
	defer loggerLock.Unlock()

	if loggerInit {
		Warnf("logger has been already inited")
		return nil
	}
	if conf.FileName != "" {
		fmt.Fprintln(os.Stderr, "log to "+conf.FileName)
	}
	logger.Sync()
	logger = NewZapLogger(conf)
	loggerInit = true
	return nil
}

// SetLogger replace the global logger
func SetLogger(l Logger) {
	loggerLock.Lock()
	defer loggerLock.Unlock()
	if l != nil {
		logger = l
	}
}

// SetLogLevel set the global log level,unknown level is ignored
func SetLogLevel(level LogLevel) {
	logger.SetLevel(level)
}

// Debugf debug
func Debugf(format string, params ...interface{}) {
	logger.Debugf(format, params...)
}

// Infof info
func Infof(format string, params ...interface{}) {
	logger.Infof(format, params...)
}

// Warnf warn
func Warnf(format string, params ...interface{}) {
	logger.Warnf(format, params...)
}

// Errorf error
func Errorf(format string, params ...interface{}) {
	logger.Errorf(format, params...)
}

// Logf log with level
func Logf(level LogLevel, format string, params ...interface{}) {
	switch level {
	case Debug:
		logger.Debugf(format, params...)
	case Warn:
		logger.Warnf(format, params...)
	case Error:
		logger.Errorf(format, params...)
	default:
		logger.Infof(format, params...)
	}
}

// DebugEnabled is debug enabled
func DebugEnabled() bool {
	return logger.DebugEnabled()
}

// InfoEnabled is info enabled
func InfoEnabled() bool {
	return logger.InfoEnabled()
}

// WarnEnabled is warn enabled
func WarnEnabled() bool {
	return logger.WarnEnabled()
}

// ErrorEnabled is error enabled
func ErrorEnabled() bool {
	return logger.ErrorEnabled()
}

// SyncLog flush the buffered logs
func SyncLog() {
	logger.Sync()
}
