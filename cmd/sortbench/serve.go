package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/exascience/parsort/bench"
	"github.com/exascience/parsort/config"
	"github.com/exascience/parsort/history"
)

const shutdownTimeout = 10 * time.Second

// maxServeElements bounds the size of benchmarks triggered over HTTP.
const maxServeElements = 1 << 26

func newServeCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve metrics and run history over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
			s := &server{cfg: *cfg, store: store, runner: newRunner(cfg, store, logger), logger: logger}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.serve(ctx, cfg.MetricsAddr)
		},
	}
	cmd.Flags().StringVar(&cfg.MetricsAddr, "addr", cfg.MetricsAddr, "listen address")
	return cmd
}

type server struct {
	cfg    config.Config
	store  history.Store
	runner *bench.Runner
	logger *log.Logger

	// Benchmarks are run one at a time, so their timings do not
	// interfere.
	mu sync.Mutex
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/runs", s.handleList).Methods("GET")
	r.HandleFunc("/runs", s.handleRun).Methods("POST")
	r.HandleFunc("/runs/{id:[0-9]+}", s.handleGet).Methods("GET")
	return r
}

func (s *server) serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Printf("sortbench listening on %s", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Println("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(err, "limit"))
			return
		}
		limit = n
	}
	runs, err := s.store.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	run, err := s.store.Get(id)
	switch {
	case errors.Is(err, history.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, run)
	}
}

type runRequest struct {
	Elements *int    `json:"elements"`
	Trials   *int    `json:"trials"`
	Seed     *uint64 `json:"seed"`
}

func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(err, "decoding request"))
			return
		}
	}
	n, trials, seed := s.cfg.Elements, s.cfg.Trials, s.cfg.Seed
	if req.Elements != nil {
		n = *req.Elements
	}
	if req.Trials != nil {
		trials = *req.Trials
	}
	if req.Seed != nil {
		seed = *req.Seed
	}
	if n < 0 || n > maxServeElements || trials < 1 {
		writeError(w, http.StatusBadRequest,
			errors.Newf("elements must be in [0, %d] and trials at least 1", maxServeElements))
		return
	}
	s.mu.Lock()
	run, err := s.runner.Run(n, trials, seed)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}
