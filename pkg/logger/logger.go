package logger

import "os"

type Logger interface {
	Info(msg string, values ...any)
	Warn(msg string, values ...any)
	Error(msg string, values ...any)
	Debug(msg string, values ...any)
	Panic(message string, values ...any)
	Fatal(error error, values ...any)
	Printf(format string, args ...interface{})
}

// The process logs from the first line, before configuration is loaded.
// Binaries call Configure once their settings are known.
func init() {
	_, err := NewLogger(Options{
		Production: os.Getenv("LOG_ENV") == "production",
		Level:      os.Getenv("LOG_LEVEL"),
	})
	if err != nil {
		panic(err)
	}
}

// Configure rebuilds the global logger. Loggers already handed out, such as
// the one held by an http server, keep the previous settings.
func Configure(opts Options) error {
	Sync()
	_, err := NewLogger(opts)
	return err
}

func Info(msg string, values ...any) {
	GetLogger().Info(msg, values...)
}

func Warn(msg string, values ...any) {
	GetLogger().Warn(msg, values...)
}

func Error(msg string, values ...any) {
	GetLogger().Error(msg, values...)
}

func Debug(msg string, values ...any) {
	GetLogger().Debug(msg, values...)
}

func Panic(msg string, values ...any) {
	GetLogger().Panic(msg, values...)
}

func Fatal(error error, values ...any) {
	GetLogger().Fatal(error, values...)
}

// Sync flushes buffered entries; call it before the process exits.
func Sync() {
	_ = GetLogger().log.Sync()
}
