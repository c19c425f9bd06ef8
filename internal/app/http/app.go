package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	appmiddleware "atelieconnect/internal/middleware"
	httprouters "atelieconnect/internal/transport/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func NewValidator() *CustomValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &CustomValidator{validator: validate}
}

type Options struct {
	Host          string
	Port          string
	SessionSecret string
	// UploadsPrefix and UploadsDir expose stored images. Empty disables it.
	UploadsPrefix string
	UploadsDir    string
}

type Server struct {
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	opts    Options
}

func New(log *slog.Logger, opts Options, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowCredentials: false,
	}))
	e.Use(appmiddleware.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", c.Request().Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			)

			return nil
		},
	}))

	e.Use(session.Middleware(sessions.NewCookieStore([]byte(opts.SessionSecret))))

	return &Server{
		log:     log,
		e:       e,
		routers: routers,
		opts:    opts,
	}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("addr", s.addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping http server", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) addr() string {
	return net.JoinHostPort(s.opts.Host, s.opts.Port)
}

func (s *Server) BuildRouters() {
	s.e.GET("/health", s.routers.Health)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if s.opts.UploadsPrefix != "" && s.opts.UploadsDir != "" {
		s.e.Static(s.opts.UploadsPrefix, s.opts.UploadsDir)
	}

	api := s.e.Group("/api/v1")
	{
		api.POST("/login", s.routers.Login)

		api.GET("/works", s.routers.ListWorks)
		api.GET("/works/recent", s.routers.RecentWorks)
		api.GET("/providers/featured", s.routers.FeaturedProviders)

		sessionGroup := api.Group("", s.routers.Session, s.routers.Identify)
		{
			sessionGroup.GET("/session", s.routers.SessionState)
			sessionGroup.DELETE("/session", s.routers.EndSession)
			sessionGroup.GET("/events", s.routers.Events)

			sessionGroup.POST("/works/draft", s.routers.OpenDraft)
			sessionGroup.PATCH("/works/draft", s.routers.UpdateDraft)
			sessionGroup.DELETE("/works/draft", s.routers.CancelDraft)
			sessionGroup.POST("/works/draft/image", s.routers.AttachImage)
			sessionGroup.POST("/works/draft/submit", s.routers.SubmitDraft)

			sessionGroup.POST("/works/:id/rating", s.routers.OpenRating)
			sessionGroup.PATCH("/works/rating", s.routers.SelectRating)
			sessionGroup.DELETE("/works/rating", s.routers.CancelRating)
			sessionGroup.POST("/works/rating/submit", s.routers.SubmitRating)
		}
	}
}
