package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
)

const (
	shutdownTimeout = 5 * time.Second

	// seconds the prometheus sink keeps a metric that was not updated
	prometheusRetentionTime = 600
)

// Server serves read only queries over the committed state of the host.
type Server struct {
	mtx     sync.Mutex
	app     *App
	metrics *telemetry.Metrics
	logger  log.Logger
	router  *mux.Router
}

// NewServer returns a server querying app. The telemetry of the host is
// served under /metrics when m is not nil.
func NewServer(app *App, m *telemetry.Metrics, logger log.Logger) *Server {
	s := &Server{
		app:     app,
		metrics: m,
		logger:  logger,
		router:  mux.NewRouter(),
	}

	s.router.HandleFunc("/clients", s.handleClients).Methods(http.MethodGet)
	s.router.HandleFunc("/clients/{client-id}/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/clients/{client-id}/client-state", s.handleClientState).Methods(http.MethodGet)
	s.router.HandleFunc("/clients/{client-id}/consensus-states/{height}", s.handleConsensusState).Methods(http.MethodGet)
	s.router.HandleFunc("/clients/{client-id}/timestamp/{height}", s.handleTimestamp).Methods(http.MethodGet)
	s.router.HandleFunc("/metadata", s.handleMetadata).Methods(http.MethodGet)
	if m != nil {
		s.router.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// query runs fn over a context of the latest committed state.
func (s *Server) query(w http.ResponseWriter, fn func(ctx sdk.Context) (interface{}, error)) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	result, err := fn(s.app.QueryContext())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClients(w http.ResponseWriter, _ *http.Request) {
	s.query(w, func(ctx sdk.Context) (interface{}, error) {
		statuses := []StatusResult{}
		s.app.ClientKeeper.IterateClientIDs(ctx, func(clientID string) bool {
			statuses = append(statuses, StatusResult{
				ClientID:     clientID,
				Status:       s.app.ClientKeeper.GetClientStatus(ctx, clientID).String(),
				LatestHeight: s.app.ClientKeeper.GetClientLatestHeight(ctx, clientID),
			})
			return false
		})
		return statuses, nil
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["client-id"]
	s.query(w, func(ctx sdk.Context) (interface{}, error) {
		return StatusResult{
			ClientID:     clientID,
			Status:       s.app.ClientKeeper.GetClientStatus(ctx, clientID).String(),
			LatestHeight: s.app.ClientKeeper.GetClientLatestHeight(ctx, clientID),
		}, nil
	})
}

func (s *Server) handleClientState(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["client-id"]
	s.query(w, func(ctx sdk.Context) (interface{}, error) {
		clientState, found := s.app.ClientKeeper.GetClientState(ctx, clientID)
		if !found {
			return nil, sdkerrors.Wrap(clienttypes.ErrClientNotFound, clientID)
		}

		return ClientStateResult{
			ClientID:    clientID,
			Checksum:    clientState.Checksum,
			ClientState: clientState,
		}, nil
	})
}

func (s *Server) handleConsensusState(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clientID := vars["client-id"]
	height, err := clienttypes.ParseHeight(vars["height"])
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.query(w, func(ctx sdk.Context) (interface{}, error) {
		consensusState, found := s.app.ClientKeeper.GetClientConsensusState(ctx, clientID, height)
		if !found {
			return nil, sdkerrors.Wrapf(clienttypes.ErrConsensusStateNotFound, "client %s at height %s", clientID, height)
		}

		return ConsensusStateResult{
			ClientID:       clientID,
			Height:         height,
			ConsensusState: consensusState,
		}, nil
	})
}

func (s *Server) handleTimestamp(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clientID := vars["client-id"]
	height, err := clienttypes.ParseHeight(vars["height"])
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.query(w, func(ctx sdk.Context) (interface{}, error) {
		timestamp, err := s.app.ClientKeeper.GetClientTimestampAtHeight(ctx, clientID, height)
		if err != nil {
			return nil, err
		}

		return TimestampResult{
			ClientID:  clientID,
			Height:    height,
			Timestamp: timestamp,
		}, nil
	})
}

func (s *Server) handleMetadata(w http.ResponseWriter, _ *http.Request) {
	s.query(w, func(ctx sdk.Context) (interface{}, error) {
		return s.app.ClientKeeper.GetAllClientMetadata(ctx)
	})
}

// handleMetrics gathers the telemetry in the format given by the format
// query parameter, prometheus or the default JSON summary.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	gr, err := s.metrics.Gather(r.FormValue("format"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", gr.ContentType)
	if _, err := w.Write(gr.Metrics); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case sdkerrors.IsOf(err, clienttypes.ErrClientNotFound, clienttypes.ErrConsensusStateNotFound):
		status = http.StatusNotFound
	case sdkerrors.IsOf(err, clienttypes.ErrClientNotActive, clienttypes.ErrClientFrozen):
		status = http.StatusConflict
	}

	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve client queries over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, app, err := openApp(cmd, v)
			if err != nil {
				return err
			}
			defer closeApp(app)

			m, err := telemetry.New(telemetry.Config{
				ServiceName:             configName,
				Enabled:                 true,
				EnableServiceLabel:      true,
				PrometheusRetentionTime: prometheusRetentionTime,
				GlobalLabels:            [][]string{{"chain_id", cfg.ChainID}},
			})
			if err != nil {
				return errors.Wrap(err, "failed to initialize telemetry")
			}

			logger := app.logger.With("module", "server")
			server := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           NewServer(app, m, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting query server", "addr", cfg.ListenAddr)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return errors.Wrap(err, "query server stopped")
			case <-ctx.Done():
			}

			logger.Info("shutting down query server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().String(flagListenAddr, DefaultConfig().ListenAddr, "address the query server listens on")
	if err := v.BindPFlag(flagListenAddr, cmd.Flags().Lookup(flagListenAddr)); err != nil {
		panic(err)
	}

	return cmd
}
