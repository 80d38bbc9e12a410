package restserver

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chrissnell/aqimonitor/internal/types"
	"github.com/chrissnell/aqimonitor/pkg/aqi"
	"github.com/chrissnell/aqimonitor/pkg/config"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

type fakeSource struct {
	reading types.Reading
	ok      bool
}

func (f *fakeSource) Latest() (types.Reading, bool) {
	return f.reading, f.ok
}

func newTestServer(t *testing.T, source *fakeSource) http.Handler {
	t.Helper()

	cfg := &config.ConfigData{Monitor: config.MonitorData{StationName: "kitchen", SampleInterval: "2s"}}
	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, cfg, config.RESTServerData{HTTPPort: 8080}, source, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	if ctrl.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("server address = %q", ctrl.Server.Addr)
	}
	return ctrl.Handler()
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func sampleReading() types.Reading {
	p := types.NewPressure(101325)
	temp := types.NewTemperature(20)
	result := aqi.Evaluate(35.5)
	return types.Reading{
		Timestamp:       time.Unix(1700000000, 0),
		StationName:     "kitchen",
		RawDensity:      36,
		SmoothedDensity: 35.5,
		AQI:             result.Index,
		Category:        result.Category,
		WebColor:        result.WebColor,
		LEDColor:        result.LEDColor,
		Pressure:        &p,
		Temperature:     &temp,
	}
}

func TestNoReadingYet(t *testing.T) {
	h := newTestServer(t, &fakeSource{})

	for _, url := range []string{"/json", "/jsonhtml"} {
		rec := get(t, h, url)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, expected 503", url, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "no reading yet") {
			t.Errorf("%s body = %q", url, rec.Body.String())
		}
	}
}

func TestGetState(t *testing.T) {
	h := newTestServer(t, &fakeSource{reading: sampleReading(), ok: true})

	rec := get(t, h, "/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var doc struct {
		Station   string `json:"station"`
		Particles struct {
			AQI          int32   `json:"aqi"`
			SmoothedUGM3 float64 `json:"smoothed_ugm3"`
		} `json:"particles"`
		Color    aqi.RGB `json:"color"`
		Pressure struct {
			KPa float64 `json:"kPa"`
		} `json:"pressure"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to decode /json: %v", err)
	}
	if doc.Station != "kitchen" || doc.Particles.AQI != 100 || doc.Particles.SmoothedUGM3 != 35.5 {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.Color != (aqi.RGB{R: 255, G: 254, B: 84}) || doc.Pressure.KPa != 101.325 {
		t.Errorf("unexpected color or pressure: %+v", doc)
	}

	rec = get(t, h, "/json?format=msgpack")
	if rec.Header().Get("Content-Type") != "application/x-msgpack" {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	var decoded map[string]any
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &decoded); err != nil || decoded["station"] != "kitchen" {
		t.Errorf("msgpack body = %v, err = %v", decoded, err)
	}
}

func TestGetHTMLState(t *testing.T) {
	h := newTestServer(t, &fakeSource{reading: sampleReading(), ok: true})

	rec := get(t, h, "/jsonhtml")
	var doc struct {
		AQI   int32  `json:"aqi"`
		Color string `json:"color"`
		Body  string `json:"body"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to decode /jsonhtml: %v", err)
	}
	if doc.AQI != 100 || doc.Color != "#fffe54" || !strings.Contains(doc.Body, "Particles: 36.0") {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestGetAQI(t *testing.T) {
	h := newTestServer(t, &fakeSource{})

	tests := []struct {
		name   string
		url    string
		status int
		aqi    int32
	}{
		{"moderate", "/aqi?density=35.5", http.StatusOK, 100},
		{"clean", "/aqi?density=0", http.StatusOK, 0},
		{"missing", "/aqi", http.StatusBadRequest, 0},
		{"garbage", "/aqi?density=lots", http.StatusBadRequest, 0},
		{"not a number", "/aqi?density=NaN", http.StatusBadRequest, 0},
		{"extreme", "/aqi?density=1e12", http.StatusOK, math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.url)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, expected %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var resp AQIResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if resp.AQI != tt.aqi {
				t.Errorf("aqi = %d, expected %d", resp.AQI, tt.aqi)
			}
		})
	}
}

func TestStaticAssets(t *testing.T) {
	h := newTestServer(t, &fakeSource{})

	tests := []struct {
		url         string
		contentType string
		contains    string
	}{
		{"/", "text/html; charset=utf-8", "<h1>kitchen</h1>"},
		{"/site.html", "text/html; charset=utf-8", "2000"},
		{"/site.css", "text/css; charset=utf-8", ".aqi"},
		{"/logo.png", "image/png", "PNG"},
		{"/favicon.ico", "image/x-icon", "PNG"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			rec := get(t, h, tt.url)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, expected 200", rec.Code)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, expected %q", got, tt.contentType)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body does not contain %q", tt.contains)
			}
		})
	}
}

func TestBadURL(t *testing.T) {
	h := newTestServer(t, &fakeSource{})

	rec := get(t, h, "/weather")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["error"] != `Bad URL: "/weather"` {
		t.Errorf("error = %q", body["error"])
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/json", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /json status = %d, expected 405", rec.Code)
	}
}
