package log

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aqimonitor.log")
	if err := InitWithFile(false, path); err != nil {
		t.Fatalf("InitWithFile failed: %v", err)
	}

	Infow("sensor started", "aqi", 42)
	Debugf("not written at info level")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file was not created: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"sensor started"`) || !strings.Contains(string(data), `"aqi":42`) {
		t.Errorf("log file is missing the entry: %s", data)
	}
	if strings.Contains(string(data), "not written") {
		t.Error("debug entry written at info level")
	}
}

func TestAccessLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core).Sugar()

	h := handlers.CustomLoggingHandler(io.Discard, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}), AccessLogger(logger))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/json?format=msgpack", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one access log entry, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["path"] != "/json" || fields["method"] != "GET" {
		t.Errorf("unexpected request fields: %v", fields)
	}
	if fields["status"] != int64(http.StatusTeapot) || fields["size"] != int64(15) {
		t.Errorf("unexpected response fields: %v", fields)
	}
}
