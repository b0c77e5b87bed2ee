// Package httpadapter exposes the document QA pipeline over HTTP.
package httpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
	"github.com/vaishh-cloud/tattva-project/internal/observability/metrics"
)

// maxUploadBytes caps request bodies slightly above the 10 MiB document
// limit so oversize files reach the extractor's own size check and get the
// byte-exact error message.
const maxUploadBytes = 12 << 20

type Router struct {
	service   string
	ingestor  ports.DocumentIngestor
	responder ports.QueryResponder
	documents ports.DocumentReader
	chats     ports.ChatStore
	cancels   *cancelRegistry
	metrics   *metrics.HTTPServerMetrics
	validator func(http.Handler) http.Handler
}

func NewRouter(
	service string,
	ingestor ports.DocumentIngestor,
	responder ports.QueryResponder,
	documents ports.DocumentReader,
	chats ports.ChatStore,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		service:   service,
		ingestor:  ingestor,
		responder: responder,
		documents: documents,
		chats:     chats,
		cancels:   newCancelRegistry(),
		metrics:   serverMetrics,
	}
}

// WithValidator installs a request-validation middleware (see
// NewOpenAPIValidator) between the observability middleware and the mux.
func (rt *Router) WithValidator(validator func(http.Handler) http.Handler) *Router {
	rt.validator = validator
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/respond", rt.respond)
	mux.HandleFunc("/v1/requests/cancel", rt.cancelRequest)
	mux.HandleFunc("/v1/chats", rt.chatsCollection)
	mux.HandleFunc("/v1/chats/", rt.chatItem)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	handler := http.Handler(mux)
	if rt.validator != nil {
		handler = rt.validator(handler)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "X-User-ID header is required"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	upload, err := readUploadedFile(file, fileHeader.Filename)
	if err != nil {
		writeError(w, err)
		return
	}

	doc, created, err := rt.ingestor.Upload(r.Context(), userID, *upload)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordUploadCache(rt.service, !created)
	}

	status := http.StatusAccepted
	if !created {
		status = http.StatusOK
	}
	writeJSON(w, status, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.documents.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) respond(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	req, err := rt.parseRespondRequest(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	release := rt.cancels.register(req.RequestID, cancel)
	defer release()

	start := time.Now()
	result, err := rt.responder.Respond(ctx, *req)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRespond(rt.service, result.FastPath, time.Since(start))
		if req.File != nil {
			rt.metrics.RecordUploadCache(rt.service, result.CacheHit)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) parseRespondRequest(w http.ResponseWriter, r *http.Request) (*ports.RespondRequest, error) {
	req := &ports.RespondRequest{
		UserID: strings.TrimSpace(r.Header.Get(userIDHeader)),
	}

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse respond form", err)
		}
		req.Query = strings.TrimSpace(r.FormValue("query"))
		req.ChatID = strings.TrimSpace(r.FormValue("chat_id"))
		req.ChatName = strings.TrimSpace(r.FormValue("chat_name"))
		req.RequestID = strings.TrimSpace(r.FormValue("request_id"))

		if file, fileHeader, err := r.FormFile("file"); err == nil {
			defer file.Close()
			upload, err := readUploadedFile(file, fileHeader.Filename)
			if err != nil {
				return nil, err
			}
			req.File = upload
		}
	default:
		var body struct {
			Query     string `json:"query"`
			ChatID    string `json:"chat_id"`
			ChatName  string `json:"chat_name"`
			RequestID string `json:"request_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse respond body", err)
		}
		req.Query = strings.TrimSpace(body.Query)
		req.ChatID = strings.TrimSpace(body.ChatID)
		req.ChatName = strings.TrimSpace(body.ChatName)
		req.RequestID = strings.TrimSpace(body.RequestID)
	}

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return req, nil
}

func (rt *Router) cancelRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var body struct {
		RequestID string `json:"request_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.RequestID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request_id is required"})
		return
	}

	cancelled := rt.cancels.cancel(strings.TrimSpace(body.RequestID))
	if rt.metrics != nil {
		rt.metrics.RecordCancellation(rt.service, cancelled)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

func (rt *Router) chatsCollection(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "X-User-ID header is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		sessions, err := rt.chats.ListSessions(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		if sessions == nil {
			sessions = []domain.ChatSession{}
		}
		writeJSON(w, http.StatusOK, sessions)
	case http.MethodPost:
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		name := strings.TrimSpace(body.Name)
		if name == "" {
			name = "New Chat"
		}

		now := time.Now().UTC()
		session := &domain.ChatSession{
			ID:          uuid.NewString(),
			UserID:      userID,
			Name:        name,
			History:     []domain.HistoryEntry{},
			Version:     1,
			CreatedAt:   now,
			LastUpdated: now,
		}
		if err := rt.chats.CreateSession(r.Context(), session); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	case http.MethodDelete:
		if err := rt.chats.DeleteAllSessions(r.Context(), userID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) chatItem(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "X-User-ID header is required"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/chats/")
	chatID, action, _ := strings.Cut(rest, "/")
	if chatID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chat id is required"})
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		session, err := rt.chats.GetSession(r.Context(), userID, chatID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	case action == "" && r.Method == http.MethodDelete:
		if err := rt.chats.DeleteSession(r.Context(), userID, chatID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case action == "rename" && r.Method == http.MethodPost:
		var body struct {
			Name    string `json:"name"`
			Version int    `json:"version"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Name) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
			return
		}
		if err := rt.chats.Rename(r.Context(), userID, chatID, strings.TrimSpace(body.Name), body.Version); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case action == "pin" && r.Method == http.MethodPost:
		var body struct {
			Pinned  bool `json:"pinned"`
			Version int  `json:"version"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		if err := rt.chats.SetPinned(r.Context(), userID, chatID, body.Pinned, body.Version); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case action == "history" && r.Method == http.MethodPut:
		var body struct {
			History []domain.HistoryEntry `json:"history"`
			Version int                   `json:"version"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		if err := rt.chats.ReplaceHistory(r.Context(), userID, chatID, body.History, body.Version); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func readUploadedFile(file multipart.File, filename string) (*ports.UploadedFile, error) {
	fileType, err := fileTypeFromName(filename)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", err)
	}
	return &ports.UploadedFile{
		Filename: filename,
		FileType: fileType,
		Data:     data,
	}, nil
}

func fileTypeFromName(filename string) (domain.FileType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	fileType := domain.FileType(ext)
	if !fileType.IsDocument() && !fileType.IsImage() {
		return "", domain.WrapError(domain.ErrInvalidInput, "detect file type",
			fmt.Errorf("unsupported file extension %q", ext))
	}
	return fileType, nil
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
