package oasguard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
)

// Middleware wraps next with request/response validation. Validation is
// observational: the response that reaches the client is byte-identical
// to what next wrote. The one exception is RejectInvalidRequestBodies,
// which answers 400 before next runs when a request's JSON body fails
// validation.
//
// Violations are logged at the configured level. Gaps in the schema
// (unresolvable paths, undocumented status codes, non-JSON bodies) are
// logged at debug and never fail the request.
func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v.exemptPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if !v.cfg.skipRequestBody && isJSONContentType(r.Header.Get("Content-Type")) {
			if stop := v.checkRequestBody(w, r); stop {
				return
			}
		}

		if v.cfg.skipResponse {
			next.ServeHTTP(w, r)
			return
		}

		rec := newResponseRecorder(w)
		next.ServeHTTP(rec, r)
		v.checkRecordedResponse(r, rec)
	})
}

func (v *Validator) checkRequestBody(w http.ResponseWriter, r *http.Request) (stop bool) {
	body, err := replaceBody(&r.Body)
	if err != nil || len(body) == 0 {
		return false
	}

	err = v.ValidateRequestBytes(r.URL.Path, r.Method, body)
	if err == nil {
		return false
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		v.logSchemaGap(r.Context(), "request body not validated", r, 0, err)
		return false
	}

	v.logViolation(r.Context(), "request body violates the documented schema", r, 0, verr)
	if v.cfg.rejectRequests {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": verr.Error()})
		return true
	}
	return false
}

func (v *Validator) checkRecordedResponse(r *http.Request, rec *responseRecorder) {
	if !isJSONContentType(rec.Header().Get("Content-Type")) || rec.body.Len() == 0 {
		return
	}

	err := v.ValidateResponseBytes(r.URL.Path, r.Method, rec.status, rec.body.Bytes())
	if err == nil {
		return
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		v.logViolation(r.Context(), "response violates the documented schema", r, rec.status, verr)
		return
	}
	v.logSchemaGap(r.Context(), "response not validated", r, rec.status, err)
}

func (v *Validator) logViolation(ctx context.Context, msg string, r *http.Request, status int, err error) {
	v.cfg.logger.Log(ctx, v.cfg.logLevel, msg, logAttrs(r, status, err)...)
}

func (v *Validator) logSchemaGap(ctx context.Context, msg string, r *http.Request, status int, err error) {
	v.cfg.logger.Log(ctx, slog.LevelDebug, msg, logAttrs(r, status, err)...)
}

func logAttrs(r *http.Request, status int, err error) []any {
	attrs := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
	if status != 0 {
		attrs = append(attrs, slog.Int("status", status))
	}
	return append(attrs, slog.String("error", err.Error()))
}

func (v *Validator) exemptPath(path string) bool {
	for _, re := range v.cfg.exempt {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func isJSONContentType(ct string) bool {
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

// responseRecorder tees the response so validation can inspect what was
// sent without altering it. Writes pass straight through to the
// underlying ResponseWriter.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rr *responseRecorder) WriteHeader(code int) {
	if !rr.wroteHeader {
		rr.status = code
		rr.wroteHeader = true
	}
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	if !rr.wroteHeader {
		rr.wroteHeader = true
	}
	rr.body.Write(b)
	return rr.ResponseWriter.Write(b)
}

func (rr *responseRecorder) Flush() {
	if f, ok := rr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
