package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardimposer/pkg/buildinfo"
	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/layout"
	"github.com/matzehuels/cardimposer/pkg/observability"
	"github.com/matzehuels/cardimposer/pkg/pipeline"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command exposing layout and preview over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and preview API over HTTP",
		Long: `Serve the layout and preview API over HTTP.

Endpoints:
  GET  /healthz         liveness probe
  GET  /v1/presets      built-in sheet and card sizes
  POST /v1/layout       card grid for the posted settings
  POST /v1/preview.png  PNG proof of the layout

Requests carry the settings form keys either as a JSON object
{"settings": {"sheet_size": "A4", "bleed": 3}, "count": 100} or as a
URL-encoded form.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			observability.SetServerHooks(logHooks{c.Logger})
			srv := &http.Server{
				Addr:         addr,
				Handler:      newServer(runner, c.Logger, c.Config.Server.MaxBodyBytes).routes(),
				ReadTimeout:  c.Config.Server.ReadTimeout,
				WriteTimeout: c.Config.Server.WriteTimeout,
			}
			return listenAndServe(ctx, srv, c.Logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// listenAndServe runs srv until ctx is cancelled, then shuts it down.
func listenAndServe(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "version", buildinfo.Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// server holds the dependencies of the HTTP handlers.
type server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	maxBody int64
}

func newServer(runner *pipeline.Runner, logger *log.Logger, maxBody int64) *server {
	if maxBody <= 0 {
		maxBody = DefaultConfig().Server.MaxBodyBytes
	}
	return &server{runner: runner, logger: logger, maxBody: maxBody}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observe)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/presets", s.presets)
		r.Post("/layout", s.layout)
		r.Post("/preview.png", s.preview)
	})
	return r
}

// observe reports every request to the server hooks under its route pattern.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
	})
}

// =============================================================================
// Handlers
// =============================================================================

// layoutRequest is the body accepted by the layout and preview endpoints.
type layoutRequest struct {
	Settings map[string]any `json:"settings"`
	Count    int            `json:"count,omitempty"`
	Scale    float64        `json:"scale,omitempty"`
	Mirror   bool           `json:"mirror,omitempty"`
}

// layoutResponse is returned by POST /v1/layout. An infeasible layout is a
// valid answer with Feasible false.
type layoutResponse struct {
	Feasible bool                   `json:"feasible"`
	Settings settings.PrintSettings `json:"settings"`
	Layout   layout.Result          `json:"layout"`
	Cards    int                    `json:"cards,omitempty"`
	Sheets   int                    `json:"sheets,omitempty"`
}

type errorResponse struct {
	Code  errs.Code `json:"code"`
	Error string    `json:"error"`
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *server) presets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presetEntries())
}

func (s *server) layout(w http.ResponseWriter, r *http.Request) {
	req, ps, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l := layout.Compute(ps)
	resp := layoutResponse{Feasible: !l.Empty(), Settings: ps, Layout: l}
	if req.Count > 0 {
		resp.Cards, resp.Sheets = req.Count, l.SheetsNeeded(req.Count)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) preview(w http.ResponseWriter, r *http.Request) {
	req, ps, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, hit, err := s.runner.Preview(r.Context(), ps, pipeline.PreviewOptions{Scale: req.Scale, Mirror: req.Mirror})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cacheStatus := "miss"
	if hit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decode reads a JSON or URL-encoded request and builds validated settings.
func (s *server) decode(w http.ResponseWriter, r *http.Request) (layoutRequest, settings.PrintSettings, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	var req layoutRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var form map[string]string
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, settings.PrintSettings{}, decodeError(err)
		}
		f, err := settings.FormFromValues(req.Settings)
		if err != nil {
			return req, settings.PrintSettings{}, err
		}
		form = f
	case "application/x-www-form-urlencoded", "":
		if err := r.ParseForm(); err != nil {
			return req, settings.PrintSettings{}, decodeError(err)
		}
		var err error
		if req, form, err = formRequest(r); err != nil {
			return req, settings.PrintSettings{}, err
		}
	default:
		return req, settings.PrintSettings{}, errs.New(errs.ErrCodeUnsupported, "unsupported content type %q", mediaType)
	}

	if req.Count < 0 {
		return req, settings.PrintSettings{}, errs.New(errs.ErrCodeInvalidInput, "count must not be negative")
	}
	ps, err := settings.FromForm(form)
	return req, ps, err
}

// formRequest splits a parsed form into request options and settings keys.
func formRequest(r *http.Request) (layoutRequest, map[string]string, error) {
	var req layoutRequest
	form := make(map[string]string, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) == 0 {
			continue
		}
		v := vs[0]
		var err error
		switch k {
		case "count":
			req.Count, err = strconv.Atoi(v)
		case "scale":
			req.Scale, err = strconv.ParseFloat(v, 64)
		case "mirror":
			req.Mirror, err = strconv.ParseBool(v)
		default:
			form[k] = v
		}
		if err != nil {
			return req, nil, errs.New(errs.ErrCodeInvalidInput, "invalid %s %q", k, v)
		}
	}
	return req, form, nil
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit)
	}
	return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request")
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeDegenerateSettings, errs.ErrCodeInvalidInput, errs.ErrCodeSchemeMismatch, errs.ErrCodeEmptyBatch:
		return http.StatusBadRequest
	case errs.ErrCodeNoFeasibleLayout:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	msg := errs.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Code: code, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
