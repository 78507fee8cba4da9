package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config defines logger settings.
type Config struct {
	Level    string // debug, info, warn, error; defaults to info
	Filename string // optional JSON log file, rotated by lumberjack
	NoCaller bool

	// Console receives human-readable log lines. Defaults to os.Stderr so
	// that stdout stays reserved for progress and summary output.
	Console io.Writer

	MaxSize    int // megabytes
	MaxBackups int
}

// New builds a sugared logger writing console lines and, when Filename is
// set, JSON lines to a rotating file.
func New(cfg *Config) (*zap.SugaredLogger, error) {
	level := new(zapcore.Level)
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			return nil, err
		}
	}

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}
	core := zapcore.NewCore(getEncoder(false), zapcore.AddSync(console), level)

	if cfg.Filename != "" {
		fileCore := zapcore.NewCore(
			getEncoder(true),
			zapcore.AddSync(getLumberjackLogger(cfg.Filename, cfg.MaxSize, cfg.MaxBackups)),
			level,
		)
		core = zapcore.NewTee(core, fileCore)
	}

	var opts []zap.Option
	opts = append(opts, zap.AddStacktrace(zap.DPanicLevel))
	if !cfg.NoCaller {
		opts = append(opts, zap.AddCaller())
	}

	return zap.New(core, opts...).Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func lastNthIndexString(s string, sub string, index int) string {
	r := strings.Split(s, sub)
	if len(r) < index {
		return s
	}
	return strings.Join(r[len(r)-index:], "/")
}

func customCallerEncoder(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(lastNthIndexString(caller.String(), "/", 2))
}

func getEncoder(jsonFormat bool) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.EncodeCaller = customCallerEncoder

	if jsonFormat {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func getLumberjackLogger(filename string, maxSize, maxBackups int) *lumberjack.Logger {
	if maxBackups == 0 {
		maxBackups = 5
	}
	if maxSize == 0 {
		maxSize = 10
	}
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}
}
