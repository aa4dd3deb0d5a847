package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/course"
	"github.com/edufacil/efs/core/group"
	"github.com/edufacil/efs/core/material"
	"github.com/edufacil/efs/core/questionnaire"
	"github.com/edufacil/efs/core/timetable"
	"github.com/edufacil/efs/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger           core.Logger
		UserSvc          user.Service
		CourseSvc        course.Service
		TimetableSvc     timetable.Service
		GroupSvc         group.Service
		QuestionnaireSvc questionnaire.Service
		MaterialSvc      material.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAuthAPI(v1, jwt, s.opts.UserSvc)
	registerProfileAPI(v1, jwt, s.opts)
	registerCourseAPI(v1, jwt, s.opts.CourseSvc, s.opts.MaterialSvc)
	registerCalendarAPI(v1, jwt, s.opts.TimetableSvc)
	registerGroupAPI(v1, jwt, s.opts.GroupSvc)
	registerQuestionnaireAPI(v1, jwt, s.opts.QuestionnaireSvc)
	registerMaterialAPI(v1, jwt, s.opts.MaterialSvc)
	registerAdminAPI(v1, jwt, s.opts)
}

func (s *server) Start() {
	s.errors <- s.app.Start(s.opts.Address)
}

func (s *server) Errors() <-chan error { return s.errors }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// signalShutdown initiates a graceful shutdown when an unrecoverable error
// is caught by the HTTP error handler.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
