package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/investment-calculator/internal/calculator"
	"github.com/iwvelando/investment-calculator/internal/config"
	"github.com/iwvelando/investment-calculator/internal/observability"
	"github.com/iwvelando/investment-calculator/internal/projection"
	"github.com/iwvelando/investment-calculator/internal/report"
	"github.com/iwvelando/investment-calculator/pkg/constants"
	"github.com/iwvelando/investment-calculator/pkg/output"
	"github.com/iwvelando/investment-calculator/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

type handler struct {
	logger        *zap.Logger
	calc          *calculator.Calculator
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the web UI and the
// projection API. A nil metrics disables /metrics.
func NewHandler(logger *zap.Logger, calc *calculator.Calculator, metrics *observability.Metrics, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, calc: calc, maxUploadSize: maxUploadSize, version: trimmedVersion}

	r := chi.NewRouter()
	r.Use(observability.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	if metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/defaults", h.handleDefaults)
		r.Post("/projection", h.handleProjection)
		r.Post("/report", h.handleReport)
		r.Post("/export", h.handleExport)
	})

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	r.Handle("/*", http.FileServer(http.FS(sub)))

	return r
}

// projectionRequest is the JSON body of the projection, report and export
// endpoints. Parameter values may be numbers or formatted strings.
type projectionRequest struct {
	Model      string                 `json:"model"`
	Parameters map[string]interface{} `json:"parameters"`
	Title      string                 `json:"title,omitempty"`
	Chart      *bool                  `json:"chart,omitempty"`
}

type projectionResponse struct {
	output.JSONResult
	Entries  []report.Entry `json:"entries"`
	Cells    [][]string     `json:"cells"`
	CSV      string         `json:"csv"`
	Duration string         `json:"duration"`
}

type defaultsField struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

type defaultsResponse struct {
	Model  projection.Model `json:"model"`
	Fields []defaultsField  `json:"fields"`
}

// requestError carries the HTTP status of a rejected request.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...interface{}) error {
	return &requestError{status: http.StatusBadRequest, err: fmt.Errorf(format, args...)}
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("model")
	if name == "" {
		name = constants.ModelBasic
	}
	model, err := projection.ParseModel(strings.ToLower(name))
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), "server.handleDefaults")
		return
	}

	rec := projection.DefaultRecord(model)
	resp := defaultsResponse{Model: model}
	for _, field := range projection.Fields(model) {
		value, _ := rec.Get(field.Key)
		resp.Fields = append(resp.Fields, defaultsField{
			Key:   field.Key,
			Label: field.Label,
			Kind:  field.Kind.String(),
			Value: value,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjection"
	start := time.Now()

	req, warnings, err := h.decodeRequest(w, r)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	result, err := h.calc.Project(req.Model, req.Params)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	csvData, err := h.calc.CSV(result)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	table := result.Table()
	cells := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		cells[i] = make([]string, len(row))
		for j, cell := range row {
			cells[i][j] = report.FormatCell(h.calc.Formatter(), table.Columns[j].Kind, cell)
		}
	}

	jsonResult := output.NewJSONResult(req.Title, result)
	jsonResult.Warnings = warnings
	elapsed := time.Since(start)
	resp := projectionResponse{
		JSONResult: jsonResult,
		Entries:    h.calc.Entries(result),
		Cells:      cells,
		CSV:        string(csvData),
		Duration:   elapsed.String(),
	}

	h.logger.Info("projection computed",
		zap.String("op", op),
		zap.String("model", string(result.Model)),
		zap.Int("rows", result.Len()),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReport"

	req, _, err := h.decodeRequest(w, r)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	out, err := h.calc.Report(r.Context(), req)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	w.Header().Set("X-Report-Pages", strconv.Itoa(out.Document.PageCount()))
	w.Header().Set("X-Report-Warnings", strconv.Itoa(len(out.Warnings)))
	h.writeDownload(w, out.Bytes, out.Filename, out.MIMEType, op)
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"

	req, _, err := h.decodeRequest(w, r)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	data, _, err := h.calc.Export(r.Context(), req)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	h.writeDownload(w, data, constants.ExportFilename, constants.ExportMIMEType+"; charset=utf-8", op)
}

// decodeRequest reads a size-limited body as either a JSON projection
// request or, for YAML content types, a configuration file. Configuration
// warnings are returned alongside the request.
func (h *handler) decodeRequest(w http.ResponseWriter, r *http.Request) (calculator.Request, []string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return calculator.Request{}, nil, &requestError{
				status: http.StatusRequestEntityTooLarge,
				err:    fmt.Errorf("request body exceeds limit of %d bytes", h.maxUploadSize),
			}
		}
		return calculator.Request{}, nil, badRequest("failed to read request: %v", err)
	}

	var (
		cfg   *config.Configuration
		title string
		chart *bool
	)
	if isYAML(r.Header.Get("Content-Type")) {
		cfg, err = config.LoadConfigurationFromReader(bytes.NewReader(data))
		if err != nil {
			return calculator.Request{}, nil, badRequest("%v", err)
		}
	} else {
		var payload projectionRequest
		if len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, &payload); err != nil {
				return calculator.Request{}, nil, badRequest("failed to decode request: %v", err)
			}
		}
		cfg, err = payload.configuration()
		if err != nil {
			return calculator.Request{}, nil, err
		}
		title, chart = payload.Title, payload.Chart
	}

	model, rec, err := cfg.Record()
	if err != nil {
		return calculator.Request{}, nil, err
	}
	req := calculator.Request{Model: model, Params: rec, Title: title}
	if chart != nil {
		req.NoChart = !*chart
	}
	return req, cfg.ValidateConfiguration(), nil
}

func (p projectionRequest) configuration() (*config.Configuration, error) {
	name := strings.ToLower(strings.TrimSpace(p.Model))
	if name == "" {
		name = constants.ModelBasic
	}
	cfg := &config.Configuration{Model: name}
	model, err := cfg.ProjectionModel()
	if err != nil {
		return nil, err
	}
	params := cfg.Parameters(model)
	for key, value := range p.Parameters {
		params[key] = value
	}
	return cfg, nil
}

func isYAML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasSuffix(mediaType, "yaml")
}

// statusFor maps pipeline errors to HTTP statuses.
func statusFor(err error) int {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.status
	}
	if validation.IsFieldError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *handler) writeDownload(w http.ResponseWriter, data []byte, filename, contentType, op string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write download",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("projection request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
