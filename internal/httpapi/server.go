package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/textra/internal/config"
	"horse.fit/textra/internal/language"
	"horse.fit/textra/internal/metrics"
	"horse.fit/textra/internal/textra"
	"horse.fit/textra/internal/translation"
)

const maxTextLength = 100_000

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	cfg          *config.Config
	manager      *translation.Manager
	combinations *textra.CombinationSet
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	opts         Options
}

type translateRequest struct {
	Mode  string `json:"mode"`
	From  string `json:"from"`
	To    string `json:"to"`
	Text  string `json:"text"`
	Force bool   `json:"force"`
}

type translateResponse struct {
	Text       string `json:"text"`
	Mode       string `json:"mode"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	Cached     bool   `json:"cached"`
	LatencyMS  int64  `json:"latency_ms"`
}

type checkResponse struct {
	Valid       bool               `json:"valid"`
	Combination textra.Combination `json:"combination"`
}

type combinationsResponse struct {
	Total        int                  `json:"total"`
	Combinations []textra.Combination `json:"combinations"`
}

func NewServer(cfg *config.Config, manager *translation.Manager, m *metrics.Metrics, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = textra.DefaultConnectTimeout + textra.DefaultReadTimeout
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		cfg:          cfg,
		manager:      manager,
		combinations: textra.DefaultCombinations(),
		metrics:      m,
		logger:       logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
	}
}

// Handler builds the echo router.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit("2M"))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/combinations", s.handleCombinations)
	api.GET("/combinations/check", s.handleCheck)
	api.POST("/translate", s.handleTranslate)

	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
	return e
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.manager == nil || s.cfg == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.Handler()
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Bool("cache", s.manager.CacheEnabled()).Msg("textra gateway started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok && strings.TrimSpace(msg) != "" {
			message = msg
		}
		switch {
		case httpErr.Code == http.StatusNotFound:
			_ = failNotFound(c, message)
			return
		case httpErr.Code >= http.StatusInternalServerError:
			_ = internalError(c, message)
			return
		}
		_ = fail(c, httpErr.Code, message, nil)
		return
	}

	s.logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("unhandled http error")
	_ = internalError(c, "Internal server error")
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"status": "ok",
		"cache":  s.manager != nil && s.manager.CacheEnabled(),
	})
}

func (s *Server) handleCombinations(c echo.Context) error {
	var mode textra.Mode
	if raw := strings.TrimSpace(c.QueryParam("mode")); raw != "" {
		parsed, err := textra.ParseMode(raw)
		if err != nil {
			return failValidation(c, map[string]string{"mode": err.Error()})
		}
		mode = parsed
	}
	from := language.FormatCode(c.QueryParam("from"))

	items := s.combinations.Filter(mode, from)
	return success(c, combinationsResponse{Total: len(items), Combinations: items})
}

func (s *Server) handleCheck(c echo.Context) error {
	opts, err := s.cfg.Options(c.QueryParam("mode"), c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return failValidation(c, map[string]string{"mode": err.Error()})
	}
	opts.WithCombinations(s.combinations)

	valid, err := opts.IsCombinationValid()
	if err != nil {
		return failValidation(c, map[string]string{"combination": err.Error()})
	}
	return success(c, checkResponse{Valid: valid, Combination: opts.Combination()})
}

func (s *Server) handleTranslate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid JSON body", nil)
	}

	fieldErrors := map[string]string{}
	if strings.TrimSpace(req.Text) == "" {
		fieldErrors["text"] = "text is required"
	} else if len(req.Text) > maxTextLength {
		fieldErrors["text"] = fmt.Sprintf("text cannot exceed %d bytes", maxTextLength)
	}
	opts, err := s.cfg.Options(req.Mode, req.From, req.To)
	if err != nil {
		fieldErrors["mode"] = err.Error()
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	outcome := s.manager.Translate(c.Request().Context(), opts, req.Text, translation.RunOptions{Force: req.Force})
	if !outcome.OK() {
		return s.translateFailure(c, outcome)
	}

	return success(c, translateResponse{
		Text:       outcome.Text,
		Mode:       opts.Mode().String(),
		SourceLang: outcome.SourceLang,
		TargetLang: outcome.TargetLang,
		Cached:     outcome.Cached,
		LatencyMS:  outcome.Latency.Milliseconds(),
	})
}

func (s *Server) translateFailure(c echo.Context, outcome translation.Outcome) error {
	data := newFailureDetail(outcome.Kind(), outcome.StatusCode)

	switch outcome.Kind() {
	case textra.FailureConfiguration:
		return fail(c, http.StatusBadRequest, outcome.Err().Error(), data)
	case textra.FailureUnsupported:
		return fail(c, http.StatusUnprocessableEntity, outcome.Err().Error(), data)
	case textra.FailureSigning, textra.FailureEncoding:
		return upstreamError(c, http.StatusInternalServerError, "Could not prepare translation request", data)
	default:
		return upstreamError(c, http.StatusBadGateway, "Translation service did not return a result", data)
	}
}
