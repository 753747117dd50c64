package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop().Sugar()
)

// Init builds the process-wide logger. mode "production" selects JSON output at info level,
// anything else a colored console logger at debug level.
func Init(mode string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	sugar := base.Sugar()
	Set(sugar)
	return sugar, nil
}

// Set replaces the process-wide logger.
func Set(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	mu.Lock()
	global = l
	mu.Unlock()
}

// L returns the process-wide logger. It is a no-op logger until Init or Set is called.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Sync() {
	_ = L().Sync()
}
