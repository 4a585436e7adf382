// Package opsserver - служебный HTTP: /healthz, /metrics, /records.
package opsserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/EgorLis/serverstatusbot/internal/scheduler"
	"github.com/EgorLis/serverstatusbot/internal/status"
)

type TickSource interface {
	LastTick() (scheduler.TickInfo, bool)
}

type Connectivity interface {
	Connected() bool
}

type Deps struct {
	Store    *status.Store
	Ticks    TickSource
	Gateway  Connectivity
	Gatherer prometheus.Gatherer
	Log      *slog.Logger
	Started  time.Time
}

type health struct {
	Status   string              `json:"status"`
	Gateway  bool                `json:"gateway"`
	Records  int                 `json:"records"`
	LastTick *scheduler.TickInfo `json:"lastTick"`
	Uptime   string              `json:"uptime"`
	RSSBytes uint64              `json:"rssBytes,omitempty"`
}

// NewRouter собирает маршруты; nil-зависимости просто отключают свою часть.
func NewRouter(d Deps) *mux.Router {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Started.IsZero() {
		d.Started = time.Now()
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", d.healthz).Methods(http.MethodGet)
	r.HandleFunc("/records", d.listRecords).Methods(http.MethodGet)
	r.HandleFunc("/records/{server}", d.getRecord).Methods(http.MethodGet)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return r
}

func (d Deps) healthz(w http.ResponseWriter, _ *http.Request) {
	h := health{Status: "ok", Uptime: time.Since(d.Started).Round(time.Second).String()}
	if d.Gateway != nil {
		h.Gateway = d.Gateway.Connected()
		if !h.Gateway {
			h.Status = "degraded"
		}
	}
	if d.Store != nil {
		h.Records = d.Store.Len()
	}
	if d.Ticks != nil {
		if info, ok := d.Ticks.LastTick(); ok {
			h.LastTick = &info
		}
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := p.MemoryInfo(); err == nil {
			h.RSSBytes = mem.RSS
		}
	}

	code := http.StatusOK
	if h.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	d.writeJSON(w, code, h)
}

func (d Deps) listRecords(w http.ResponseWriter, _ *http.Request) {
	recs := []status.Record{}
	if d.Store != nil {
		recs = d.Store.Snapshot()
	}
	d.writeJSON(w, http.StatusOK, recs)
}

func (d Deps) getRecord(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["server"]
	if d.Store == nil {
		http.NotFound(w, r)
		return
	}
	rec, ok := d.Store.Get(key)
	if !ok {
		http.NotFound(w, r)
		return
	}
	d.writeJSON(w, http.StatusOK, rec)
}

func (d Deps) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		d.Log.Warn("ops: write response", "err", err)
	}
}

// Serve слушает addr до отмены ctx, затем корректно гасит сервер.
func Serve(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("ops server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
