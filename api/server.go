package api

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"sync"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bitmark-inc/covid-dashboard/logmodule"
	"github.com/bitmark-inc/covid-dashboard/refresher"
	"github.com/bitmark-inc/covid-dashboard/store"
)

var log *logrus.Entry

//go:embed templates/*.html
var templateFS embed.FS

func init() {
	log = logrus.WithField("prefix", "gin")
}

// Refresher is the part of refresher.Refresher the server needs
type Refresher interface {
	Refresh(ctx context.Context) (*refresher.Result, error)
	ForceRefresh(ctx context.Context) (*refresher.Result, error)
}

// Server to run a http server instance
type Server struct {
	// Server instance
	server *http.Server

	// Stores
	store store.CaseStore

	refresher Refresher
	country   string
	window    int
	adminKey  string
	version   string

	// dashboard built from the latest refresh
	mu   sync.RWMutex
	view *dashboard
}

// Config of a Server
type Config struct {
	Country  string
	Window   int
	AdminKey string
	Version  string
}

// NewServer new instance of server, serving the data of result
func NewServer(s store.CaseStore, r Refresher, result *refresher.Result, cfg Config) *Server {
	server := &Server{
		store:     s,
		refresher: r,
		country:   cfg.Country,
		window:    cfg.Window,
		adminKey:  cfg.AdminKey,
		version:   cfg.Version,
	}
	server.setView(result)
	return server
}

func (s *Server) setView(result *refresher.Result) {
	v := newDashboard(s.country, result, s.window)
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

func (s *Server) currentView() *dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Run to run the server
func (s *Server) Run(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.setupRouter(),
	}

	return s.server.ListenAndServe()
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         10 * time.Second,
	}))
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")))

	pageRoute := r.Group("/")
	pageRoute.Use(logmodule.Ginrus("Page"))
	{
		pageRoute.GET("", s.index)
	}

	apiRoute := r.Group("/api")
	apiRoute.Use(logmodule.Ginrus("API"))
	apiRoute.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"Origin"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowAllOrigins:  true,
		MaxAge:           12 * time.Hour,
	}))
	{
		apiRoute.GET("/cases", s.getCases)
		apiRoute.GET("/daily", s.getDaily)
		apiRoute.GET("/summary", s.getSummary)
		apiRoute.GET("/export.csv", s.exportCases)
	}

	secretRoute := apiRoute.Group("")
	secretRoute.Use(s.apikeyAuthentication(s.adminKey))
	{
		secretRoute.POST("/refresh", s.refresh)
	}

	r.GET("/healthz", s.healthz)

	return r
}

// Shutdown to shutdown the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// shouldInterupt sends error message and determine if it should interupt the current flow
func shouldInterupt(err error, c *gin.Context) bool {
	if err == nil {
		return false
	}

	log.Error(err)
	abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer)
	return true
}

func (s *Server) healthz(c *gin.Context) {
	// Ping db
	err := s.store.Ping()
	if shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"version": s.version,
	})
}

func responseWithEncoding(c *gin.Context, code int, obj ErrorResponse) {
	acceptEncoding := c.GetHeader("Accept-Encoding")
	switch acceptEncoding {
	default:
		c.JSON(code, obj)
	}
}

func abortWithEncoding(c *gin.Context, code int, obj ErrorResponse, errors ...error) {
	for _, err := range errors {
		c.Error(err)
	}
	responseWithEncoding(c, code, obj)
	c.Abort()
}
