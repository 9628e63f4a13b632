package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lampe2020/l2db/pkg/codec"
	"github.com/lampe2020/l2db/pkg/store"
	"github.com/lampe2020/l2db/pkg/value"
)

// KeyValueResponse is the payload returned for a single key lookup.
type KeyValueResponse struct {
	Key   string      `json:"key"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// WriteRequest is the JSON body accepted by handlePut.
type WriteRequest struct {
	Value interface{} `json:"value"`
	Type  string      `json:"type,omitempty"`
}

// CleanupRequest is the JSON body accepted by handleCleanup.
type CleanupRequest struct {
	OnlyFlag   bool `json:"only_flag,omitempty"`
	DontRescue bool `json:"dont_rescue,omitempty"`
}

// Server holds the API server state
type Server struct {
	store   KeyStore
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(st KeyStore, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		store:   st,
		config:  config,
		metrics: metrics,
	}
}

// statusFor maps store errors onto HTTP status codes.
func statusFor(err error) int {
	var keyErr *store.KeyError
	var typeErr *store.TypeError
	var modeErr *store.ModeError
	var dirtyErr *store.DirtyError
	var notFound *store.NotFoundError
	var formatErr *codec.FormatError

	switch {
	case errors.As(err, &keyErr), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &typeErr), errors.As(err, &formatErr):
		return http.StatusBadRequest
	case errors.As(err, &modeErr):
		return http.StatusForbidden
	case errors.As(err, &dirtyErr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) recordDBOperation(op string, success bool, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordDBOperation(op, success, time.Since(start))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(true)
	}
	sendSuccess(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key := chi.URLParam(r, "key")
	if key == "" {
		s.recordDBOperation("get", false, start)
		sendError(w, http.StatusBadRequest, "Key is required")
		return
	}

	vtype := value.Type(r.URL.Query().Get("type"))
	if vtype != "" && !value.KnownType(vtype) {
		s.recordDBOperation("get", false, start)
		sendError(w, http.StatusBadRequest, "Unknown value type: "+string(vtype))
		return
	}

	v, err := s.store.Read(key, vtype)
	if err != nil {
		s.recordDBOperation("get", false, start)
		sendError(w, statusFor(err), err.Error())
		return
	}

	s.recordDBOperation("get", true, start)
	sendSuccess(w, http.StatusOK, KeyValueResponse{
		Key:   key,
		Type:  string(v.Type()),
		Value: v.Interface(),
	})
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key := chi.URLParam(r, "key")
	if key == "" {
		s.recordDBOperation("put", false, start)
		sendError(w, http.StatusBadRequest, "Key is required")
		return
	}

	var v value.Value
	var vtype value.Type

	if r.Header.Get("Content-Type") == "application/octet-stream" {
		// Raw bodies are stored verbatim.
		body, err := io.ReadAll(r.Body)
		if err != nil {
			s.recordDBOperation("put", false, start)
			sendError(w, http.StatusBadRequest, "Failed to read request body")
			return
		}
		v = value.Raw(body)
	} else {
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()

		var req WriteRequest
		if err := dec.Decode(&req); err != nil {
			s.recordDBOperation("put", false, start)
			sendError(w, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}

		vtype = value.Type(req.Type)
		if vtype != "" && !value.KnownType(vtype) {
			s.recordDBOperation("put", false, start)
			sendError(w, http.StatusBadRequest, "Unknown value type: "+req.Type)
			return
		}

		var err error
		v, err = value.FromAny(req.Value)
		if err != nil {
			s.recordDBOperation("put", false, start)
			sendError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	stored, err := s.store.Write(key, v, vtype)
	if err != nil {
		s.recordDBOperation("put", false, start)
		sendError(w, statusFor(err), err.Error())
		return
	}

	s.syncStats()
	s.recordDBOperation("put", true, start)
	sendSuccess(w, http.StatusOK, KeyValueResponse{
		Key:   key,
		Type:  string(stored.Type()),
		Value: stored.Interface(),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key := chi.URLParam(r, "key")
	if key == "" {
		s.recordDBOperation("delete", false, start)
		sendError(w, http.StatusBadRequest, "Key is required")
		return
	}

	former, err := s.store.Delete(key)
	if err != nil {
		s.recordDBOperation("delete", false, start)
		sendError(w, statusFor(err), err.Error())
		return
	}

	s.syncStats()
	s.recordDBOperation("delete", true, start)
	sendSuccess(w, http.StatusOK, KeyValueResponse{
		Key:   key,
		Type:  string(former.Type()),
		Value: former.Interface(),
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key := chi.URLParam(r, "key")
	vtype := value.Type(chi.URLParam(r, "type"))
	if !value.KnownType(vtype) {
		s.recordDBOperation("convert", false, start)
		sendError(w, http.StatusBadRequest, "Unknown value type: "+string(vtype))
		return
	}

	v, err := s.store.Convert(key, vtype)
	if err != nil {
		s.recordDBOperation("convert", false, start)
		sendError(w, statusFor(err), err.Error())
		return
	}

	s.recordDBOperation("convert", true, start)
	sendSuccess(w, http.StatusOK, KeyValueResponse{
		Key:   key,
		Type:  string(v.Type()),
		Value: v.Interface(),
	})
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	keys := s.store.Keys()
	s.recordDBOperation("keys", true, start)
	sendSuccess(w, http.StatusOK, map[string]interface{}{
		"keys":  keys,
		"count": len(keys),
	})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CleanupRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.recordDBOperation("cleanup", false, start)
			sendError(w, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
	}

	report, err := s.store.Cleanup(req.OnlyFlag, req.DontRescue)
	if err != nil {
		s.recordDBOperation("cleanup", false, start)
		sendError(w, statusFor(err), err.Error())
		return
	}

	s.syncStats()
	s.recordDBOperation("cleanup", true, start)
	sendSuccess(w, http.StatusOK, map[string]interface{}{
		"repaired": report,
	})
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := s.store.Flush(); err != nil {
		s.recordDBOperation("flush", false, start)
		sendError(w, statusFor(err), err.Error())
		return
	}

	s.recordDBOperation("flush", true, start)
	sendSuccess(w, http.StatusOK, map[string]string{"status": "flushed"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	info := s.store.Stat()
	s.syncStats()
	s.recordDBOperation("info", true, start)
	sendSuccess(w, http.StatusOK, info)
}

func (s *Server) syncStats() {
	if s.metrics != nil {
		s.metrics.UpdateDBStats(len(s.store.Keys()))
	}
}
