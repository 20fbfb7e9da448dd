package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"folio/api/internal/blob"
	"folio/api/internal/content"
	"folio/api/internal/util"
)

// maxUploadBytes bounds background image uploads.
const maxUploadBytes = 10 << 20

type HTTPServer struct {
	service    *Service
	corsOrigin string
	log        *zap.Logger
}

func NewHTTPServer(service *Service, corsOrigin string, log *zap.Logger) *HTTPServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPServer{service: service, corsOrigin: corsOrigin, log: log}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"blob": map[string]any{"status": "ok"},
		}
		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["blob"] = map[string]any{"status": "error", "error": err.Error()}
		}
		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.URL.Path == "/api/content" {
		s.handleContent(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/login" {
		s.handleLogin(w, r)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/background" {
		imageURL, err := s.service.Background(r.Context())
		if err != nil {
			s.log.Error("load background", zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"imageUrl": imageURL})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/upload-background" {
		if !s.requireAdminSession(w, r) {
			return
		}
		s.handleUploadBackground(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/remove-background" {
		if !s.requireAdminSession(w, r) {
			return
		}
		if err := s.service.RemoveBackground(r.Context()); err != nil {
			s.log.Error("remove background", zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Background removed successfully"})
		return
	}

	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/uploads/") {
		s.handleServeUpload(w, r)
		return
	}

	writeMessage(w, http.StatusNotFound, "Not found")
}

// handleContent serves the versioned content document. GET returns the
// current document; POST commits a write under the shared-secret token
// and the optimistic version check.
func (s *HTTPServer) handleContent(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		doc, err := s.service.CurrentContent(r.Context())
		if err != nil {
			s.log.Error("load content", zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, doc)
		return

	case http.MethodPost:
		token := strings.TrimSpace(r.Header.Get("x-admin-token"))
		expected := s.service.AdminToken()
		if expected == "" || token != expected {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var body struct {
			Content         *content.SiteContent `json:"content"`
			ExpectedVersion *int                 `json:"expectedVersion"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		if body.Content == nil {
			writeMessage(w, http.StatusBadRequest, "Missing content payload.")
			return
		}

		updated, err := s.service.SaveContent(r.Context(), *body.Content, body.ExpectedVersion)
		if errors.Is(err, ErrVersionConflict) {
			// The conflict body is the current stored document itself,
			// not an error envelope, so the client can reconcile.
			writeJSON(w, http.StatusConflict, updated)
			return
		}
		if err != nil {
			s.log.Error("save content", zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, updated)
		return
	}

	w.Header().Set("Allow", "GET, POST")
	writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := s.service.Login(body.Password)
	if errors.Is(err, ErrUnauthorized) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid password"})
		return
	}
	if err != nil {
		s.log.Error("login", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

func (s *HTTPServer) handleUploadBackground(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded.")
		return
	}
	file, header, err := r.FormFile("background")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded.")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(header.Filename))
	}

	imageURL, err := s.service.SaveBackground(r.Context(), header.Filename, data, contentType)
	if err != nil {
		s.log.Error("save background", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imageUrl": imageURL})
}

func (s *HTTPServer) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/uploads/")
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	data, err := s.service.Upload(r.Context(), name)
	if errors.Is(err, blob.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		s.log.Error("serve upload", zap.Error(err), zap.String("name", name))
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *HTTPServer) requireAdminSession(w http.ResponseWriter, r *http.Request) bool {
	token := bearerToken(r)
	if token == "" {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	if err := s.service.VerifySession(token); err != nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	return true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = util.NewID("")
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		s.log.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", writer.status),
			zap.Int64("duration_ms", time.Since(started).Milliseconds()),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, x-admin-token")
	header.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	// Content must always reflect the latest write.
	header.Set("Cache-Control", "no-store")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
