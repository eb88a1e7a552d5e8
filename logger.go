package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// isWASM is true when running in a WebAssembly (browser) environment.
var isWASM = (runtime.GOOS == "js" || runtime.GOARCH == "wasm")

const logDir = "logs"

var (
	errorLogger  *log.Logger
	errorLogPath string
	errorLogOnce sync.Once

	debugLogger  *log.Logger
	debugLogPath string
	debugLogOnce sync.Once
	// debugFrameDumpLen limits how many bytes of a frame are logged.
	// A value of 0 dumps the entire frame.
	debugFrameDumpLen = 256
)

func setupLogging(debug bool) {
	if !isWASM {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("could not create log directory: %v", err)
		}
	}
	ts := time.Now().Format("20060102-150405")

	errorLogPath = filepath.Join(logDir, fmt.Sprintf("error-%s.log", ts))
	errorLogOnce = sync.Once{}
	errorLogger = log.New(os.Stdout, "", log.LstdFlags)
	log.SetOutput(errorLogger.Writer())

	setDebugLogging(debug)
}

// openErrorLog attaches the error log file on first use so clean runs leave
// no empty files behind.
func openErrorLog() {
	errorLogOnce.Do(func() {
		if isWASM {
			return
		}
		if f, err := os.Create(errorLogPath); err == nil {
			errorLogger.SetOutput(io.MultiWriter(os.Stdout, f))
			log.SetOutput(errorLogger.Writer())
		}
	})
}

func logError(format string, v ...interface{}) {
	if errorLogger == nil {
		log.Printf(format, v...)
		return
	}
	openErrorLog()
	errorLogger.Printf(format, v...)
}

func logWarn(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	if errorLogger == nil {
		log.Printf("warning: %s", msg)
		return
	}
	openErrorLog()
	errorLogger.Printf("warning: %s", msg)
}

func logDebug(format string, v ...interface{}) {
	if debugLogger == nil {
		return
	}
	debugLogOnce.Do(func() {
		if isWASM {
			return
		}
		if f, err := os.Create(debugLogPath); err == nil {
			debugLogger.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	})
	debugLogger.Printf(format, v...)
}

// logDebugFrame logs an inbound or outbound text frame, truncated to
// debugFrameDumpLen bytes.
func logDebugFrame(prefix string, data []byte) {
	if debugLogger == nil {
		return
	}
	n := len(data)
	dump := data
	if debugFrameDumpLen > 0 && n > debugFrameDumpLen {
		dump = data[:debugFrameDumpLen]
	}
	logDebug("%s len=%d frame=%s", prefix, n, dump)
}

func setDebugLogging(enabled bool) {
	if enabled {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("could not create log directory: %v", err)
		}
		ts := time.Now().Format("20060102-150405")
		debugLogPath = filepath.Join(logDir, fmt.Sprintf("debug-%s.log", ts))
		debugLogOnce = sync.Once{}
		debugLogger = log.New(os.Stdout, "", log.LstdFlags)
	} else {
		debugLogger = nil
	}
}

// netLogf routes netlink messages: problems go to the error log, the rest
// to the debug log.
func netLogf(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	switch {
	case strings.HasPrefix(msg, "dropping frame"), strings.HasPrefix(msg, "dial "), strings.HasPrefix(msg, "encode "):
		logWarn("netlink: %s", msg)
	default:
		logDebug("netlink: %s", msg)
	}
}
