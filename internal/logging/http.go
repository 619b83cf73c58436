package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultMaxBodySize = 10000

// sensitiveHeaders are replaced with [REDACTED] before a request is logged.
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"x-api-key":     true,
	"api-key":       true,
	"cookie":        true,
	"set-cookie":    true,
}

// sensitiveKeys are matched case-insensitively as substrings of JSON object keys.
var sensitiveKeys = []string{"api_key", "apikey", "api-key", "password", "secret", "token", "authorization"}

// HTTPLogger logs completion-service traffic at debug level.
type HTTPLogger struct {
	logger      *Logger
	maxBodySize int
}

// NewHTTPLogger creates a new HTTP logger
func NewHTTPLogger(logger *Logger) *HTTPLogger {
	return &HTTPLogger{logger: logger, maxBodySize: defaultMaxBodySize}
}

// SetMaxBodySize sets the maximum body size to log (in bytes)
func (h *HTTPLogger) SetMaxBodySize(size int) {
	h.maxBodySize = size
}

// LogRequest logs an outgoing request. The body is decoded and redacted when it is JSON.
func (h *HTTPLogger) LogRequest(req *http.Request, body []byte) {
	fields := Fields{
		"method":  req.Method,
		"url":     req.URL.String(),
		"headers": redactHeaders(req.Header),
	}
	if len(body) > 0 {
		fields["body"] = h.bodyField(body)
		fields["body_size"] = len(body)
	}
	h.logger.Debug("HTTP Request", fields)
}

// LogResponse logs a buffered response.
func (h *HTTPLogger) LogResponse(resp *http.Response, body []byte, duration time.Duration) {
	fields := Fields{
		"status":      resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
	}
	if id := resp.Header.Get("Request-Id"); id != "" {
		fields["request_id"] = id
	}
	if len(body) > 0 {
		fields["body"] = h.bodyField(body)
		fields["body_size"] = len(body)
	}
	h.logger.Debug("HTTP Response", fields)
}

// LogStreamEnd logs the end of an event stream once its body has been closed.
func (h *HTTPLogger) LogStreamEnd(duration time.Duration, totalBytes int64) {
	h.logger.Debug("HTTP Stream Ended", Fields{
		"duration_ms": duration.Milliseconds(),
		"total_bytes": totalBytes,
	})
}

// LogError logs a request that failed before a response arrived.
func (h *HTTPLogger) LogError(err error, req *http.Request) {
	h.logger.Error("HTTP Error", err, Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	})
}

func (h *HTTPLogger) bodyField(body []byte) interface{} {
	var parsed interface{}
	if json.Valid(body) && json.Unmarshal(body, &parsed) == nil {
		return redactSensitiveFields(parsed)
	}
	if len(body) <= h.maxBodySize {
		return string(body)
	}
	return string(body[:h.maxBodySize]) + "...[truncated]"
}

// RoundTripperWrapper wraps an http.RoundTripper with logging
type RoundTripperWrapper struct {
	wrapped http.RoundTripper
	logger  *HTTPLogger
	logBody bool
}

// NewLoggingRoundTripper creates a new logging round tripper
func NewLoggingRoundTripper(wrapped http.RoundTripper, logger *HTTPLogger, logBody bool) *RoundTripperWrapper {
	if wrapped == nil {
		wrapped = http.DefaultTransport
	}
	return &RoundTripperWrapper{wrapped: wrapped, logger: logger, logBody: logBody}
}

// RoundTrip implements http.RoundTripper. Event-stream bodies are never buffered;
// they are wrapped so the stream size and duration are logged on Close.
func (rt *RoundTripperWrapper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	var reqBody []byte
	if rt.logBody && req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}
	rt.logger.LogRequest(req, reqBody)

	resp, err := rt.wrapped.RoundTrip(req)
	if err != nil {
		rt.logger.LogError(err, req)
		return nil, err
	}

	if isStreamingResponse(resp) {
		rt.logger.LogResponse(resp, nil, time.Since(start))
		resp.Body = &countingBody{ReadCloser: resp.Body, start: start, logger: rt.logger}
		return resp, nil
	}

	var respBody []byte
	if rt.logBody {
		respBody, _ = io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(respBody))
	}
	rt.logger.LogResponse(resp, respBody, time.Since(start))
	return resp, nil
}

type countingBody struct {
	io.ReadCloser
	start  time.Time
	logger *HTTPLogger
	n      int64
	closed bool
}

func (b *countingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.n += int64(n)
	return n, err
}

func (b *countingBody) Close() error {
	if !b.closed {
		b.closed = true
		b.logger.LogStreamEnd(time.Since(b.start), b.n)
	}
	return b.ReadCloser.Close()
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		switch {
		case sensitiveHeaders[strings.ToLower(k)]:
			out[k] = "[REDACTED]"
		case len(v) > 0:
			out[k] = v[0]
		}
	}
	return out
}

func isStreamingResponse(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream")
}

func redactSensitiveFields(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for k, val := range v {
			if isSensitiveKey(k) {
				result[k] = "[REDACTED]"
				continue
			}
			result[k] = redactSensitiveFields(val)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = redactSensitiveFields(item)
		}
		return result
	default:
		return data
	}
}

func isSensitiveKey(k string) bool {
	lower := strings.ToLower(k)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
