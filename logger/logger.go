package logger

import (
	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stake-ledger/config"
)

// Logger discards everything until Init is called.
var Logger = zap.NewNop().Sugar()

func Init(conf config.LogConf) error {
	level := zap.DebugLevel
	if conf.Level != "" {
		if err := level.UnmarshalText([]byte(conf.Level)); err != nil {
			return err
		}
	}
	filename := conf.File
	if filename == "" {
		filename = "log.log"
	}

	hook := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    orDefault(conf.MaxSize, 50),
		MaxBackups: orDefault(conf.MaxBackups, 5),
		MaxAge:     orDefault(conf.MaxAge, 1),
		Compress:   conf.Compress,
	}
	enConfig := zap.NewProductionEncoderConfig()

	enConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	w := zapcore.AddSync(hook)
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enConfig),
		w,
		level,
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	Logger = logger.Sugar()
	Logger.Info("Start...")
	return nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
