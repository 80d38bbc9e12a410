package restserver

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/aqimonitor/internal/log"
	"github.com/chrissnell/aqimonitor/internal/types"
	"github.com/chrissnell/aqimonitor/pkg/config"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ReadingSource provides the most recent reading
type ReadingSource interface {
	Latest() (types.Reading, bool)
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	FS         fs.FS
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, rc config.RESTServerData, source ReadingSource, logger *zap.SugaredLogger) (*Controller, error) {
	if source == nil {
		return nil, fmt.Errorf("REST server requires a reading source")
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = config.DefaultListenAddr
	}
	if rc.HTTPPort == 0 {
		logger.Infof("rest.port not provided; defaulting to %d", config.DefaultHTTPPort)
		rc.HTTPPort = config.DefaultHTTPPort
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		FS:         GetAssets(),
		logger:     logger.Named("rest"),
	}

	ctrl.handlers = NewHandlers(ctrl.FS, cfg.Monitor.StationName, cfg.Monitor.SampleIntervalDuration(), source, ctrl.logger)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.HTTPPort)
	ctrl.Server.Handler = ctrl.Handler()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// Handler returns the router wrapped in the access logger
func (c *Controller) Handler() http.Handler {
	return handlers.CustomLoggingHandler(io.Discard, c.setupRouter(), log.AccessLogger(c.logger))
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	c.logger.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.TLSCertPath != "" && c.restConfig.TLSKeyPath != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.TLSCertPath, c.restConfig.TLSKeyPath); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	// Status page
	router.HandleFunc("/", c.handlers.ServeSite).Methods(http.MethodGet)
	router.HandleFunc("/site.html", c.handlers.ServeSite).Methods(http.MethodGet)
	router.HandleFunc("/site.css", c.handlers.ServeAsset).Methods(http.MethodGet)
	router.HandleFunc("/favicon.ico", c.handlers.ServeAsset).Methods(http.MethodGet)
	router.HandleFunc("/logo.png", c.handlers.ServeAsset).Methods(http.MethodGet)

	// API endpoints
	router.HandleFunc("/json", c.handlers.GetState).Methods(http.MethodGet)
	router.HandleFunc("/jsonhtml", c.handlers.GetHTMLState).Methods(http.MethodGet)
	router.HandleFunc("/aqi", c.handlers.GetAQI).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(c.handlers.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(c.handlers.MethodNotAllowed)

	return router
}
