package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/driftline/supportsim/api/schemas"
	"github.com/driftline/supportsim/internal/observability"
	"github.com/driftline/supportsim/internal/persona"
	"github.com/driftline/supportsim/internal/scheduler"
	"github.com/driftline/supportsim/internal/transport"
)

// newServeCmd creates the `serve` command: host the delivery scheduler and
// forward its event stream to WebSocket clients.
func newServeCmd() *cobra.Command {
	var listenAddr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the typing-simulation service with a WebSocket event stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			if listenAddr == "" {
				listenAddr = cfg.Server.ListenAddr
			}

			hub := transport.NewHub(logger.Named("transport"), cfg.Server.WriteTimeout, cfg.Server.ClientBuffer)
			sched := scheduler.New(newBuilderFromConfig(cfg), hub, scheduler.Options{
				CompletionGrace: cfg.Scheduler.CompletionGrace,
				Logger:          logger.Named("scheduler"),
			})

			srv := &http.Server{
				Addr:    listenAddr,
				Handler: newServeMux(sched, hub),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("event-stream server listening", zap.String("addr", listenAddr))
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down")
				sched.StopAll()
				hub.Close()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}

	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (overrides server.listen_addr)")
	return serveCmd
}

// startPayload is the request body for starting a typing run.
type startPayload struct {
	Message      string                  `json:"message"`
	PersonaID    string                  `json:"persona_id"`
	MoodModifier float64                 `json:"mood_modifier"`
	Difficulty   schemas.DifficultyLevel `json:"difficulty"`
	Settings     schemas.SessionSettings `json:"settings"`
}

// newServeMux wires the session control surface and the event stream.
func newServeMux(sched *scheduler.Scheduler, hub *transport.Hub) *http.ServeMux {
	api := jsoniter.ConfigCompatibleWithStandardLibrary
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = api.NewEncoder(w).Encode(v)
	}

	mux.Handle("GET /ws", hub)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"clients":  hub.ClientCount(),
			"sessions": len(sched.ActiveSessions()),
		})
	})

	mux.HandleFunc("GET /personas", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, persona.IDs())
	})

	mux.HandleFunc("POST /sessions/{id}/start", func(w http.ResponseWriter, r *http.Request) {
		var payload startPayload
		payload.Settings = schemas.DefaultSessionSettings()
		if err := api.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		state := sched.Start(scheduler.StartRequest{
			SessionID:    r.PathValue("id"),
			Message:      payload.Message,
			PersonaID:    payload.PersonaID,
			MoodModifier: payload.MoodModifier,
			Difficulty:   payload.Difficulty,
			Settings:     payload.Settings,
		})
		writeJSON(w, http.StatusOK, state)
	})

	control := func(op func(string) bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !op(r.PathValue("id")) {
				writeJSON(w, http.StatusConflict, map[string]bool{"ok": false})
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		}
	}
	mux.HandleFunc("POST /sessions/{id}/pause", control(sched.Pause))
	mux.HandleFunc("POST /sessions/{id}/resume", control(sched.Resume))
	mux.HandleFunc("POST /sessions/{id}/interrupt", control(sched.Interrupt))
	mux.HandleFunc("POST /sessions/{id}/stop", control(sched.Stop))

	mux.HandleFunc("PATCH /sessions/{id}/settings", func(w http.ResponseWriter, r *http.Request) {
		var patch schemas.SettingsPatch
		if err := api.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if !sched.UpdateSettings(r.PathValue("id"), patch) {
			writeJSON(w, http.StatusNotFound, map[string]bool{"ok": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	mux.HandleFunc("GET /sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		state := sched.GetState(r.PathValue("id"))
		if state == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown session"})
			return
		}
		writeJSON(w, http.StatusOK, state)
	})

	return mux
}
