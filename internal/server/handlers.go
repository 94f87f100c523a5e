package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"fjacquet/statement-compare/internal/categorizer"
	"fjacquet/statement-compare/internal/comparison"
	"fjacquet/statement-compare/internal/history"
	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/models"
	"fjacquet/statement-compare/internal/parsererror"
	"fjacquet/statement-compare/internal/pipeline"
	"fjacquet/statement-compare/internal/statement"

	"github.com/shopspring/decimal"
)

type statementPayload struct {
	Filename string          `json:"filename"`
	Response json.RawMessage `json:"response"`
}

type optionsPayload struct {
	ExcludeCategories     []string         `json:"excludeCategories"`
	IncludeOnlyCategories []string         `json:"includeOnlyCategories"`
	MinimumAmount         *decimal.Decimal `json:"minimumAmount"`
	From                  string           `json:"from"`
	To                    string           `json:"to"`
}

type compareRequest struct {
	Statement1  statementPayload `json:"statement1"`
	Statement2  statementPayload `json:"statement2"`
	Options     *optionsPayload  `json:"options"`
	Narrate     bool             `json:"narrate"`
	SkipHistory bool             `json:"skipHistory"`
}

type categorizeRequest struct {
	Description string `json:"description"`
}

type categorizeResponse struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Label       string `json:"label"`
	Keyword     string `json:"keyword,omitempty"`
}

type categoryInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type categoriesResponse struct {
	Builtin   []categoryInfo `json:"builtin"`
	Custom    []string       `json:"custom"`
	Available []string       `json:"available"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

type editRequest struct {
	Description string `json:"description"`
	OldCategory string `json:"oldCategory"`
	NewCategory string `json:"newCategory"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in1, err := payloadInput(req.Statement1, "statement1.json")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	in2, err := payloadInput(req.Statement2, "statement2.json")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	opts, err := req.Options.toOptions()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.runPipeline(w, r, pipeline.Request{
		Statement1:  in1,
		Statement2:  in2,
		Options:     opts,
		Narrate:     req.Narrate,
		SkipHistory: req.SkipHistory,
	})
}

func (s *Server) handleCompareUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	in1, closer1, err := formInput(r, "statement1")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer func() { _ = closer1.Close() }()
	in2, closer2, err := formInput(r, "statement2")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer func() { _ = closer2.Close() }()

	var opts *comparison.Options
	if raw := r.FormValue("options"); raw != "" {
		var payload optionsPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid options: %v", err))
			return
		}
		if opts, err = payload.toOptions(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	s.runPipeline(w, r, pipeline.Request{
		Statement1:  in1,
		Statement2:  in2,
		Options:     opts,
		Narrate:     formBool(r, "narrate"),
		SkipHistory: formBool(r, "skipHistory"),
	})
}

func (s *Server) runPipeline(w http.ResponseWriter, r *http.Request, req pipeline.Request) {
	out, err := s.pipeline.Run(r.Context(), req)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	m := s.categorizer.Match(req.Description)
	writeJSON(w, http.StatusOK, categorizeResponse{
		Description: req.Description,
		Category:    m.Category,
		Label:       models.CategoryLabel(m.Category),
		Keyword:     m.Keyword,
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.categories())
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.custom.Add(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.saveCustom(); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.categories())
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.custom.Remove(name) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("custom category not found: %s", name))
		return
	}
	if err := s.saveCustom(); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.categories())
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}
	limit := history.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	list, err := s.history.ListComparisons(r.Context(), limit)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}
	c, err := s.history.GetComparison(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleListEdits(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}
	edits, err := s.history.ListCategoryEdits(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, edits)
}

func (s *Server) handleLogEdit(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}
	var req editRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !categorizer.IsKnownCategory(req.NewCategory, s.custom) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category: %s", req.NewCategory))
		return
	}
	edit, err := s.history.LogCategoryEdit(r.Context(), history.CategoryEdit{
		ComparisonID: r.PathValue("id"),
		Description:  req.Description,
		OldCategory:  req.OldCategory,
		NewCategory:  req.NewCategory,
	})
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			s.writeErr(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, edit)
}

func (s *Server) categories() categoriesResponse {
	resp := categoriesResponse{Custom: s.custom.List(), Available: categorizer.AvailableCategories(s.custom)}
	for _, name := range models.BuiltinCategories() {
		resp.Builtin = append(resp.Builtin, categoryInfo{Name: name, Label: models.CategoryLabel(name)})
	}
	return resp
}

func (s *Server) saveCustom() error {
	if s.store == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.store.SaveCustomCategories(s.custom.List())
}

func (s *Server) requireHistory(w http.ResponseWriter) bool {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return false
	}
	return true
}

func (o *optionsPayload) toOptions() (*comparison.Options, error) {
	if o == nil {
		return nil, nil
	}
	opts := &comparison.Options{
		ExcludeCategories:     o.ExcludeCategories,
		IncludeOnlyCategories: o.IncludeOnlyCategories,
		MinimumAmount:         o.MinimumAmount,
	}
	if o.From != "" || o.To != "" {
		dr := &comparison.DateRange{}
		var err error
		if o.From != "" {
			if dr.Start, err = statement.ParseDate(o.From); err != nil {
				return nil, fmt.Errorf("invalid from date: %w", err)
			}
		}
		if o.To != "" {
			if dr.End, err = statement.ParseDate(o.To); err != nil {
				return nil, fmt.Errorf("invalid to date: %w", err)
			}
		}
		opts.DateRange = dr
	}
	return opts, nil
}

func payloadInput(p statementPayload, fallbackName string) (pipeline.Input, error) {
	name := p.Filename
	if name == "" {
		name = fallbackName
	}
	if len(bytes.TrimSpace(p.Response)) == 0 {
		return pipeline.Input{Filename: name}, nil
	}
	resp, err := statement.DecodeAPIResponse(bytes.NewReader(p.Response))
	if err != nil {
		var ve *parsererror.ValidationError
		if errors.As(err, &ve) {
			ve.FilePath = name
		}
		return pipeline.Input{}, err
	}
	return pipeline.Input{Filename: name, Response: resp}, nil
}

func formInput(r *http.Request, field string) (pipeline.Input, multipart.File, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return pipeline.Input{}, nil, fmt.Errorf("missing file field %q", field)
	}
	return pipeline.Input{Filename: header.Filename, Reader: file}, file, nil
}

func formBool(r *http.Request, field string) bool {
	v, _ := strconv.ParseBool(r.FormValue(field))
	return v
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, parsererror.ErrConverterUnavailable):
		return http.StatusServiceUnavailable
	case parsererror.IsConverterError(err):
		return http.StatusBadGateway
	case parsererror.IsUserError(err):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed", logging.F(logging.FieldStatus, status))
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
