package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

const logFileName = "journal-metrics-api.log"

// LogWriter is shared by the standard logger, gin and the gorm logger.
var LogWriter io.Writer = os.Stdout

// LogFilePath is LOG_DIR/journal-metrics-api.log, LOG_DIR defaulting to "logs".
func LogFilePath() string {
	return filepath.Join(envString("LOG_DIR", "logs"), logFileName)
}

// InitLogging points LogWriter at stdout plus the log file. Set LOG_TO_FILE=false
// to keep stdout only. A file that cannot be opened downgrades to stdout. The
// returned func closes the file.
func InitLogging() (io.Writer, func()) {
	if !envBool("LOG_TO_FILE", true) {
		return setLogWriter(os.Stdout), func() {}
	}

	path := LogFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("Warning: cannot create log directory for %s: %v", path, err)
		return setLogWriter(os.Stdout), func() {}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Warning: cannot open log file %s: %v", path, err)
		return setLogWriter(os.Stdout), func() {}
	}

	w := setLogWriter(io.MultiWriter(os.Stdout, file))
	return w, func() {
		if err := file.Close(); err != nil {
			log.Printf("Warning: closing log file: %v", err)
		}
	}
}

func setLogWriter(w io.Writer) io.Writer {
	LogWriter = w
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return w
}
