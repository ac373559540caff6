package utils

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"os"
	"time"
)

const appName = "Coursehub"

// LoggerConfig configures InitLogger.
type LoggerConfig struct {
	// Format is "text" or "json".
	Format string
	Output io.Writer
	// EnableColors colours the prefix on terminals.
	EnableColors bool
}

// InitLogger returns the application logger. With Format "json" every line
// is a JSON object with time, app and msg fields.
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	if cfg.Format == "json" {
		return log.New(&jsonWriter{out: cfg.Output, now: time.Now}, "", 0)
	}

	prefix := "[" + appName + "] "
	if cfg.EnableColors {
		prefix = "\033[36m" + prefix + "\033[0m"
	}
	return log.New(cfg.Output, prefix, log.LstdFlags|log.Lshortfile|log.LUTC)
}

type logLine struct {
	Time string `json:"time"`
	App  string `json:"app"`
	Msg  string `json:"msg"`
}

// jsonWriter receives one complete entry per Write from log.Logger.
type jsonWriter struct {
	out io.Writer
	now func() time.Time
}

func (w *jsonWriter) Write(p []byte) (int, error) {
	line, err := json.Marshal(logLine{
		Time: w.now().UTC().Format(time.RFC3339),
		App:  appName,
		Msg:  string(bytes.TrimRight(p, "\n")),
	})
	if err != nil {
		return 0, err
	}
	if _, err := w.out.Write(append(line, '\n')); err != nil {
		return 0, err
	}
	return len(p), nil
}
