package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/common/expfmt"

	"kcvdb/pkg/batch"
	"kcvdb/pkg/columnstore"
	"kcvdb/pkg/dberrors"
	"kcvdb/pkg/keystore"
	"kcvdb/pkg/types"
)

const (
	contentTypeJSON        = "application/json"
	defaultHTTPPort        = "8080"
	defaultShutdownTimeout = time.Second * 5
	maxBodyBytes           = 8 << 20
)

type iStoreManager interface {
	OpenDatabase(name string) (*keystore.KeyColumnValueStore, error)
	Lookup(name string) (*keystore.KeyColumnValueStore, error)
	MutateMany(mutations map[string]map[string]batch.Mutation, level types.ConsistencyLevel) error
	ClearStorage() error
	Names() []string
	Stats() map[string]keystore.Stats
}

// Server exposes the store manager over HTTP with JSON bodies.
type Server struct {
	stores       iStoreManager
	defaultLevel types.ConsistencyLevel
	httpServer   *http.Server
	URL          string
	addr         string
}

// NewServer creates a new server instance. Requests that do not name a
// consistency level run at defaultLevel.
func NewServer(stores iStoreManager, port string, defaultLevel types.ConsistencyLevel) *Server {
	if port == "" {
		port = defaultHTTPPort
	}
	return &Server{
		stores:       stores,
		defaultLevel: defaultLevel,
		URL:          "http://localhost:" + port,
		addr:         ":" + port,
	}
}

// Start starts the server
func (s *Server) Start() error {
	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

// createRouter builds chi router
func (s *Server) createRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/api/stores", s.handleListStores)
	r.Delete("/api/stores", s.handleClearStorage)
	r.Post("/api/mutate", s.handleMutateMany)
	r.Delete("/api/stores/{store}", s.handleClear)
	r.Get("/api/stores/{store}/keys", s.handleKeys)
	r.Post("/api/stores/{store}/get", s.handleGet)
	r.Post("/api/stores/{store}/slice", s.handleSlice)
	r.Post("/api/stores/{store}/mutate", s.handleMutate)

	return r
}

func (s *Server) startHTTPServer() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.createRouter(),
		ReadHeaderTimeout: time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("HTTP server started", "addr", s.URL)
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Error encoding response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dberrors.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, dberrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, dberrors.ErrClosed):
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, NewErrorResponse(err.Error()))
}

// decode reads a JSON body into dst and rejects requests without a key.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{ key() []byte }) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed body: %v", dberrors.ErrInvalidArgument, err)
	}
	if len(dst.key()) == 0 {
		return fmt.Errorf("%w: missing key", dberrors.ErrInvalidArgument)
	}
	return nil
}

func (s *Server) level(name string) (types.ConsistencyLevel, error) {
	if name == "" {
		return s.defaultLevel, nil
	}
	return types.ParseConsistencyLevel(name)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NewOKResponse())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	families := metricFamilies(s.stores.Names(), s.stores.Stats())

	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	if err := writeMetrics(w, families); err != nil {
		slog.Warn("Failed to write metrics response", "error", err)
	}
}

func (s *Server) handleListStores(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NewStoresResponse(s.stores.Names()))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	var req getRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	level, err := s.level(req.Consistency)
	if err != nil {
		s.writeError(w, err)
		return
	}

	store, err := s.stores.Lookup(chi.URLParam(r, "store"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	value, found := store.Get(req.Key, req.Column, level)
	if !found {
		s.writeJSON(w, http.StatusNotFound, NewErrorResponse("Column not found"))
		return
	}

	s.writeJSON(w, http.StatusOK, NewValueResponse(value))
}

func (s *Server) handleSlice(w http.ResponseWriter, r *http.Request) {
	var req sliceRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	level, err := s.level(req.Consistency)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Limit != nil && *req.Limit < 0 {
		s.writeError(w, fmt.Errorf("%w: negative limit", dberrors.ErrInvalidArgument))
		return
	}

	store, err := s.stores.Lookup(chi.URLParam(r, "store"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := columnstore.NewSliceQuery(req.Start, req.End)
	if req.Limit != nil {
		q = q.WithLimit(*req.Limit)
	}

	s.writeJSON(w, http.StatusOK, NewEntriesResponse(store.GetSlice(req.Key, q, level)))
}

func (s *Server) handleMutate(w http.ResponseWriter, r *http.Request) {
	var req mutateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	level, err := s.level(req.Consistency)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.IsEmpty() {
		s.writeError(w, fmt.Errorf("%w: empty mutation", dberrors.ErrInvalidArgument))
		return
	}

	store, err := s.stores.OpenDatabase(chi.URLParam(r, "store"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	store.Mutate(req.Key, req.Additions, req.Deletions, level)
	slog.Debug("mutation applied",
		"store", store.Name(), "additions", len(req.Additions), "deletions", len(req.Deletions), "level", level)

	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	level, err := s.level(r.URL.Query().Get("consistency"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	store, err := s.stores.Lookup(chi.URLParam(r, "store"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	keys := [][]byte{}
	store.Keys(level, func(key types.Key) bool {
		keys = append(keys, key)
		return true
	})

	s.writeJSON(w, http.StatusOK, NewKeysResponse(keys))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	store, err := s.stores.Lookup(chi.URLParam(r, "store"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	store.Clear()
	slog.Info("store cleared", "store", store.Name())

	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}

func (s *Server) handleMutateMany(w http.ResponseWriter, r *http.Request) {
	var req mutateManyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: malformed body: %v", dberrors.ErrInvalidArgument, err))
		return
	}
	level, err := s.level(req.Consistency)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.Mutations) == 0 {
		s.writeError(w, fmt.Errorf("%w: no mutations", dberrors.ErrInvalidArgument))
		return
	}

	// Reject the whole request before applying anything: keys are not
	// mutated atomically with each other.
	changes := 0
	for store, rows := range req.Mutations {
		if store == "" {
			s.writeError(w, fmt.Errorf("%w: empty store name", dberrors.ErrInvalidArgument))
			return
		}
		for key, mut := range rows {
			if key == "" {
				s.writeError(w, fmt.Errorf("%w: missing key in store %q", dberrors.ErrInvalidArgument, store))
				return
			}
			if mut.IsEmpty() {
				s.writeError(w, fmt.Errorf("%w: empty mutation for key %q in store %q",
					dberrors.ErrInvalidArgument, key, store))
				return
			}
			changes += mut.Count()
		}
	}

	if err := s.stores.MutateMany(req.Mutations, level); err != nil {
		s.writeError(w, err)
		return
	}
	slog.Debug("batch mutation applied", "stores", len(req.Mutations), "changes", changes, "level", level)

	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}

func (s *Server) handleClearStorage(w http.ResponseWriter, r *http.Request) {
	if err := s.stores.ClearStorage(); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}
