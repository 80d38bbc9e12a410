package restserver

import (
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"math"
	"mime"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/chrissnell/aqimonitor/internal/constants"
	"github.com/chrissnell/aqimonitor/internal/controllers"
	"github.com/chrissnell/aqimonitor/pkg/aqi"
	"github.com/chrissnell/aqimonitor/pkg/responseformat"
	"go.uber.org/zap"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	fs          fs.FS
	stationName string
	refresh     time.Duration
	source      ReadingSource
	formatter   *responseformat.Formatter
	site        *htmltemplate.Template
	logger      *zap.SugaredLogger
}

// NewHandlers creates a new handlers instance
func NewHandlers(assets fs.FS, stationName string, refresh time.Duration, source ReadingSource, logger *zap.SugaredLogger) *Handlers {
	h := &Handlers{
		fs:          assets,
		stationName: stationName,
		refresh:     refresh,
		source:      source,
		formatter:   responseformat.NewFormatter(),
		logger:      logger,
	}

	site, err := htmltemplate.New("site.html.tmpl").ParseFS(assets, "site.html.tmpl")
	if err != nil {
		logger.Errorf("error parsing site template: %v", err)
	} else {
		h.site = site
	}

	return h
}

var assetTypes = map[string]string{
	".css": "text/css; charset=utf-8",
	".ico": "image/x-icon",
	".png": "image/png",
}

// AQIResponse is returned by /aqi for an arbitrary density
type AQIResponse struct {
	Density  float64 `json:"density"`
	AQI      int32   `json:"aqi"`
	Category string  `json:"category"`
	Color    aqi.RGB `json:"color"`
	Hex      string  `json:"hex"`
	LEDColor aqi.RGB `json:"led_color"`
}

// ServeSite renders the status page
func (h *Handlers) ServeSite(w http.ResponseWriter, req *http.Request) {
	if h.site == nil {
		http.Error(w, "status page unavailable", http.StatusInternalServerError)
		return
	}

	refresh := h.refresh
	if refresh < time.Second {
		refresh = time.Second
	}

	data := struct {
		StationName   string
		Version       string
		RefreshMillis int64
	}{
		StationName:   h.stationName,
		Version:       constants.Version,
		RefreshMillis: refresh.Milliseconds(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.site.Execute(w, data); err != nil {
		h.logger.Errorf("error executing site template: %v", err)
	}
}

// ServeAsset serves a static asset named by the request path
func (h *Handlers) ServeAsset(w http.ResponseWriter, req *http.Request) {
	name := path.Base(req.URL.Path)

	data, err := fs.ReadFile(h.fs, name)
	if err != nil {
		h.NotFound(w, req)
		return
	}

	ct, ok := assetTypes[path.Ext(name)]
	if !ok {
		ct = mime.TypeByExtension(path.Ext(name))
	}
	if ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// GetState returns the latest reading
func (h *Handlers) GetState(w http.ResponseWriter, req *http.Request) {
	r, ok := h.source.Latest()
	if !ok {
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "no reading yet")
		return
	}

	if err := h.formatter.WriteResponse(w, req, http.StatusOK, controllers.NewState(r)); err != nil {
		h.logger.Errorf("error encoding state: %v", err)
	}
}

// GetHTMLState returns the latest reading as an HTML fragment for the status page
func (h *Handlers) GetHTMLState(w http.ResponseWriter, req *http.Request) {
	r, ok := h.source.Latest()
	if !ok {
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "no reading yet")
		return
	}

	if err := h.formatter.WriteResponse(w, req, http.StatusOK, controllers.NewHTMLState(r)); err != nil {
		h.logger.Errorf("error encoding html state: %v", err)
	}
}

// GetAQI evaluates the density given in the query string
func (h *Handlers) GetAQI(w http.ResponseWriter, req *http.Request) {
	raw := req.URL.Query().Get("density")
	if raw == "" {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "missing density parameter")
		return
	}

	density, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(density) || math.IsInf(density, 0) {
		h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid density: %q", raw))
		return
	}

	result := aqi.Evaluate(density)
	resp := AQIResponse{
		Density:  density,
		AQI:      result.Index,
		Category: result.Category,
		Color:    result.WebColor,
		Hex:      result.WebColor.Hex(),
		LEDColor: result.LEDColor,
	}

	if err := h.formatter.WriteResponse(w, req, http.StatusOK, resp); err != nil {
		h.logger.Errorf("error encoding aqi response: %v", err)
	}
}

// NotFound reports an unknown path
func (h *Handlers) NotFound(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteError(w, req, http.StatusNotFound, fmt.Sprintf("Bad URL: %q", req.URL.Path))
}

func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteError(w, req, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", req.Method))
}
