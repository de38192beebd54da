package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Runs first: nothing has called Setup yet.
func TestDefaultLoggerIsNop(t *testing.T) {
	if Enabled(zapcore.ErrorLevel) {
		t.Error("default logger should discard everything")
	}
	Named("loader").Info("ignored", zap.Int("n", 1))
	Sync()
}

func resetLog(t *testing.T) {
	t.Cleanup(func() {
		Log = zap.NewNop()
		level.SetLevel(zapcore.InfoLevel)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"fatal", zapcore.InfoLevel, true},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || (!tt.wantErr && got != tt.want) {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestSetup_Console(t *testing.T) {
	resetLog(t)

	var buf bytes.Buffer
	if err := Setup(Options{Level: "warn", Console: &buf}); err != nil {
		t.Fatal(err)
	}
	Named("loader").Info("parsed header")
	Named("loader").Warn("truncated name", zap.Int("bone", 3))
	Sync()

	out := buf.String()
	if strings.Contains(out, "parsed header") {
		t.Errorf("info message written at warn level:\n%s", out)
	}
	for _, want := range []string{"WARN", "loader", "truncated name", `"bone": 3`} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}

	SetLevel(zapcore.DebugLevel)
	if !Enabled(zapcore.DebugLevel) {
		t.Error("SetLevel(debug) not applied")
	}
}

func TestSetup_RejectsLevel(t *testing.T) {
	resetLog(t)
	if err := Setup(Options{Level: "loud"}); err == nil {
		t.Error("Setup accepted an unknown level")
	}
}

func TestSetup_FileLevels(t *testing.T) {
	resetLog(t)
	tempDir := t.TempDir()

	tests := []struct {
		level string
		want  []string
	}{
		{"error", []string{"ERROR"}},
		{"warn", []string{"WARN", "ERROR"}},
		{"info", []string{"INFO", "WARN", "ERROR"}},
		{"debug", []string{"DEBUG", "INFO", "WARN", "ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(tempDir, tt.level+".log")
			fc := &FileConfig{Path: logFile, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1}
			if err := Setup(Options{Level: tt.level, File: fc}); err != nil {
				t.Fatal(err)
			}

			log := Named("mmdtool")
			log.Debug("debug message")
			log.Info("info message")
			log.Warn("warn message")
			log.Error("error message")
			Sync()

			f, err := os.Open(logFile)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()

			var levels []string
			sc := bufio.NewScanner(f)
			for sc.Scan() {
				var entry map[string]any
				if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
					t.Fatalf("line %q is not JSON: %v", sc.Text(), err)
				}
				if entry["logger"] != "mmdtool" || entry["caller"] == nil {
					t.Errorf("entry = %v", entry)
				}
				levels = append(levels, entry["level"].(string))
			}
			if strings.Join(levels, ",") != strings.Join(tt.want, ",") {
				t.Errorf("levels = %v, want %v", levels, tt.want)
			}
		})
	}
}

func TestLogRotation(t *testing.T) {
	resetLog(t)
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "test.log")

	// 1MB is the smallest size lumberjack accepts.
	fc := &FileConfig{Path: logFile, MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 1}
	if err := Setup(Options{Level: "debug", File: fc}); err != nil {
		t.Fatal(err)
	}

	pad := strings.Repeat("x", 200)
	log := Named("loader")
	for i := 0; i < 15000; i++ {
		log.Info("decoded frame", zap.Int("frame", i), zap.String("pad", pad))
	}
	Sync()

	files, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	rotated := 0
	for _, f := range files {
		name := f.Name()
		if name == "test.log" {
			continue
		}
		// lumberjack names backups test-YYYY-MM-DDTHH-MM-SS.SSS.log
		if !strings.HasPrefix(name, "test-20") || !strings.HasSuffix(name, ".log") {
			t.Errorf("unexpected file %s", name)
		}
		rotated++
	}
	if rotated == 0 {
		t.Error("no rotated files found")
	}
}
