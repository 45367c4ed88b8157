package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/thinkscotty/explainer/internal/explain"
	"github.com/thinkscotty/explainer/internal/models"
)

const maxFiles = 10

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := s.explainer.Ready(); err != nil {
		status, msg := errorResponse(err)
		slog.Error("Explain unavailable", "kind", explain.KindOf(err).String(), "error", err)
		jsonError(w, msg, status)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)

	var req explain.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("Request body too large (max %d bytes)", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		slog.Debug("Malformed explain request", "error", err)
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		jsonError(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	result, err := s.explainer.Explain(r.Context(), req)
	s.logUsage(req, result, err, time.Since(start))
	if err != nil {
		status, msg := errorResponse(err)
		if status >= 500 {
			slog.Error("Explain failed", "kind", explain.KindOf(err).String(), "error", err)
		} else {
			slog.Info("Explain rejected", "kind", explain.KindOf(err).String(), "error", err)
		}
		jsonError(w, msg, status)
		return
	}

	jsonResponse(w, map[string]string{"explanation": result.Explanation})
}

// errorResponse maps a pipeline error to an HTTP status and the message the
// caller may see.
func errorResponse(err error) (int, string) {
	var ee *explain.Error
	if !errors.As(err, &ee) {
		return http.StatusInternalServerError, explain.MsgServiceFailed
	}
	switch ee.Kind {
	case explain.KindInvalidInput, explain.KindInvalidParameter:
		return http.StatusBadRequest, ee.Message
	default:
		return http.StatusInternalServerError, ee.Message
	}
}

func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return "Invalid request body"
	}
	fe := ves[0]
	switch {
	case fe.Field() == "files" && fe.Tag() == "max":
		return fmt.Sprintf("Invalid input: Too many files (max %d)", maxFiles)
	case fe.Tag() == "required":
		return fmt.Sprintf("Invalid input: File %s is required", fe.Field())
	case fe.Tag() == "max":
		return fmt.Sprintf("Invalid input: File %s is too long", fe.Field())
	default:
		return fmt.Sprintf("Invalid input: %s is invalid", fe.Field())
	}
}

func (s *Server) logUsage(req explain.Request, result *explain.Result, err error, elapsed time.Duration) {
	if s.store == nil {
		return
	}

	entry := models.ExplainLog{
		Simplicity: int(req.Simplicity),
		Tone:       req.Tone.Label(),
		CustomTone: req.Tone.IsCustom(),
		InputKind:  string(explain.InputText),
		FileCount:  len(req.Files),
		Outcome:    models.OutcomeOK,
		DurationMs: elapsed.Milliseconds(),
	}
	if len(req.Files) > 0 {
		entry.InputKind = string(explain.InputFiles)
	}
	if result != nil {
		entry.InputKind = string(result.Input)
		entry.TokensUsed = result.TokensUsed
		entry.Model = result.Model
	}
	if err != nil {
		entry.Outcome = explain.KindOf(err).String()
		_, entry.ErrorMessage = errorResponse(err)
	}

	if err := s.store.LogExplain(entry); err != nil {
		slog.Error("Failed to log explain usage", "error", err)
	}
}
