package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/tosih/a2l-calreader/pkg/blocks"
	"github.com/tosih/a2l-calreader/pkg/calibration"
	"github.com/tosih/a2l-calreader/pkg/compare"
	"github.com/tosih/a2l-calreader/pkg/config"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/models"
	"github.com/tosih/a2l-calreader/pkg/store"
	"github.com/tosih/a2l-calreader/pkg/symbols"
)

// MaxMemoryRead bounds one raw memory request
const MaxMemoryRead = 64 * 1024

// EPKResponse reports the EPROM identifier check of the served image
type EPKResponse struct {
	Status   calibration.EPKStatus `json:"status"`
	Expected string                `json:"expected,omitempty"`
	Address  uint32                `json:"address"`
	Found    string                `json:"found,omitempty"`
}

// Server exposes one decode pass and the memory it was decoded from
type Server struct {
	Config   *config.ServerConfig
	Model    *symbols.Model
	Memory   image.Memory
	Pass     *calibration.Result
	Plan     []blocks.Block
	Baseline *store.Store
	Logger   *zap.Logger
	*mux.Router
}

func NewServer(cfg *config.ServerConfig, model *symbols.Model, mem image.Memory, pass *calibration.Result, plan []blocks.Block, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		Config: cfg,
		Model:  model,
		Memory: mem,
		Pass:   pass,
		Plan:   plan,
		Logger: logger,
	}
	s.configureRouter()
	return s
}

func (s *Server) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/passes/current", s.handlePass()).Methods("GET")
	subRouter.HandleFunc("/parameters/{category}", s.handleParameters()).Methods("GET")
	subRouter.HandleFunc("/parameters/{category}/{name}", s.handleParameter()).Methods("GET")
	subRouter.HandleFunc("/compare/{category}/{name}", s.handleCompare()).Methods("GET")
	subRouter.HandleFunc("/blocks", s.handleBlocks()).Methods("GET")
	subRouter.HandleFunc("/epk", s.handleEPK()).Methods("GET")
	subRouter.HandleFunc("/memory/{addr}/{length:[0-9]+}", s.handleMemory()).Methods("GET")
}

// Handler wraps the router with request logging, panic recovery and CORS
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router
	h = handlers.CORS(handlers.AllowedMethods([]string{"GET"}))(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(zap.NewStdLog(s.Logger)))(h)
	return handlers.CombinedLoggingHandler(zap.NewStdLog(s.Logger).Writer(), h)
}

// Start serves the API until the listener fails. With open set the default
// browser is pointed at the current pass.
func (s *Server) Start(open bool) error {
	addr := s.Config.Addr()
	url := fmt.Sprintf("http://%s/api/passes/current", addr)

	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("Calibration API Started")

	pterm.Info.Printf("Serving pass %s at http://%s/api\n", s.Pass.ID, addr)
	pterm.Info.Println("Press Ctrl+C to stop the server")
	pterm.Println()

	s.Logger.Info("starting API server", zap.String("address", addr))
	if open {
		if err := openBrowser(url); err != nil {
			s.Logger.Warn("cannot open browser", zap.Error(err))
		}
	}

	httpServer := &http.Server{
		Handler:      s.Handler(),
		Addr:         addr,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return httpServer.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func validCategory(category string) bool {
	for _, c := range models.StoreCategories {
		if c == category {
			return true
		}
	}
	return false
}

func (s *Server) handlePass() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.Pass.Summary())
	}
}

func (s *Server) handleParameters() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		category := vars["category"]
		if !validCategory(category) {
			http.Error(w, fmt.Sprintf("Category %s not found", category), http.StatusNotFound)
			return
		}
		params := make([]models.Parameter, 0, s.Pass.Store.Len(category))
		s.Pass.Store.Each(category, func(p models.Parameter) error {
			params = append(params, p)
			return nil
		})
		writeJSON(w, params)
	}
}

func (s *Server) handleParameter() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		p, ok := s.Pass.Store.Get(vars["category"], vars["name"])
		if !ok {
			http.Error(w, fmt.Sprintf("Parameter %s/%s not found", vars["category"], vars["name"]), http.StatusNotFound)
			return
		}
		writeJSON(w, p)
	}
}

func (s *Server) handleCompare() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Baseline == nil {
			http.Error(w, "No baseline loaded", http.StatusNotFound)
			return
		}
		vars := mux.Vars(r)
		category, name := vars["category"], vars["name"]
		current, ok := s.Pass.Store.Get(category, name)
		if !ok {
			http.Error(w, fmt.Sprintf("Parameter %s/%s not found", category, name), http.StatusNotFound)
			return
		}
		baseline, ok := s.Baseline.Get(category, name)
		if !ok {
			writeJSON(w, compare.Change{Category: category, Name: name, Status: compare.Added})
			return
		}
		writeJSON(w, compare.Parameter(category, baseline, current))
	}
}

func (s *Server) handleBlocks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan := s.Plan
		if plan == nil {
			plan = []blocks.Block{}
		}
		writeJSON(w, plan)
	}
}

func (s *Server) handleEPK() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := EPKResponse{Status: s.Pass.EPK}
		if epk, ok := s.Model.EPK(); ok {
			resp.Expected = epk.Value
			resp.Address = epk.Address
			if found, err := s.Memory.ReadText(epk.Address, len(epk.Value)); err == nil {
				resp.Found = found
			}
		}
		writeJSON(w, resp)
	}
}

func (s *Server) handleMemory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		addr, err := strconv.ParseUint(vars["addr"], 0, 32)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		length, err := strconv.Atoi(vars["length"])
		if err != nil || length <= 0 || length > MaxMemoryRead {
			http.Error(w, fmt.Sprintf("Length must be between 1 and %d", MaxMemoryRead), http.StatusBadRequest)
			return
		}

		s.Logger.Debug("memory read", zap.Uint64("address", addr), zap.Int("length", length))
		data, err := s.Memory.Read(uint32(addr), length)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(data)
	}
}
