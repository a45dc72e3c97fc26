package common

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZapLogger 使用zap封装的logger
type ZapLogger struct {
	level  zap.AtomicLevel
	logger *zap.SugaredLogger
}

// Debugf debug
func (l *ZapLogger) Debugf(format string, params ...interface{}) {
	l.logger.Debugf(format, params...)
}

// Infof info
func (l *ZapLogger) Infof(format string, params ...interface{}) {
	l.logger.Infof(format, params...)
}

// Warnf warn
func (l *ZapLogger) Warnf(format string, params ...interface{}) {
	l.logger.Warnf(format, params...)
}

// Errorf error
func (l *ZapLogger) Errorf(format string, params ...interface{}) {
	l.logger.Errorf(format, params...)
}

// DebugEnabled implements Logger
func (l *ZapLogger) DebugEnabled() bool {
	return l.level.Enabled(zap.DebugLevel)
}

// InfoEnabled implements Logger
func (l *ZapLogger) InfoEnabled() bool {
	return l.level.Enabled(zap.InfoLevel)
}

// WarnEnabled implements Logger
func (l *ZapLogger) WarnEnabled() bool {
	return l.level.Enabled(zap.WarnLevel)
}

// ErrorEnabled implements Logger
func (l *ZapLogger) ErrorEnabled() bool {
	return l.level.Enabled(zap.ErrorLevel)
}

// Sync implements Logger.Sync
func (l *ZapLogger) Sync() {
	_ = l.logger.Sync()
}

// SetLevel implements Logger.SetLevel
func (l *ZapLogger) SetLevel(level LogLevel) {
	if zapl, ok := level.zapLevel(); ok {
		l.level.SetLevel(zapl)
	}
}

// NewZapLogger create zap logger from logConfig,logs go to stderr unless FileName is set
func NewZapLogger(logConfig *LogConfig) *ZapLogger {
	var out io.Writer = os.Stderr
	if logConfig.FileName != "" {
		out = &lumberjack.Logger{
			Filename:   logConfig.FileName,
			MaxSize:    logConfig.MaxSize,
			MaxBackups: logConfig.MaxBackups,
			MaxAge:     logConfig.MaxAge,
			LocalTime:  true,
		}
	}
	return NewZapLoggerWithWriter(logConfig, out)
}

// NewZapLoggerWithWriter create zap logger which writes to out
func NewZapLoggerWithWriter(logConfig *LogConfig, out io.Writer) *ZapLogger {
	var encoderConf zapcore.EncoderConfig
	var level zap.AtomicLevel

	if logConfig.Env == EnvProduction {
		encoderConf = zap.NewProductionEncoderConfig()
		encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder
		level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	} else {
		encoderConf = zap.NewDevelopmentEncoderConfig()
		level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	if logConfig.Level != "" {
		if zapl, ok := LogLevel(logConfig.Level).zapLevel(); ok {
			level.SetLevel(zapl)
		}
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConf), zapcore.AddSync(out), level)
	zl := zap.New(core)
	if !logConfig.NoCaller {
		//跳过ZapLogger和包级别的日志函数
		zl = zl.WithOptions(zap.AddCaller(), zap.AddCallerSkip(2))
	}
	return &ZapLogger{logger: zl.Sugar(), level: level}
}
