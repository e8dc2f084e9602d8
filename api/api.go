// Package api exposes the census authority and the franchise proof
// verifier over HTTP. It lets an election organizer build and publish
// censuses, voters download their authentication paths, and anyone submit
// votes, which are accepted iff their eligibility proof verifies and their
// nullifier was not seen before.
package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vocdoni/zk-franchise-proof/census"
	"github.com/vocdoni/zk-franchise-proof/log"
	"github.com/vocdoni/zk-franchise-proof/prover"
)

// Config holds the parameters of the API HTTP server.
type Config struct {
	Host     string
	Port     int
	CensusDB *census.CensusDB
	Prover   *prover.ProvingSystem
}

// API is the HTTP server. It keeps the set of spent nullifiers in memory;
// a production deployment would back it with the same database as the
// census store.
type API struct {
	router   *chi.Mux
	censusDB *census.CensusDB
	prover   *prover.ProvingSystem

	nullifiersMu sync.Mutex
	nullifiers   map[string]bool
}

// New creates the API instance and starts the HTTP server.
func New(conf *Config) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.CensusDB == nil {
		return nil, fmt.Errorf("missing census database")
	}
	if conf.Prover == nil {
		return nil, fmt.Errorf("missing proving system")
	}
	a := &API{
		censusDB:   conf.CensusDB,
		prover:     conf.Prover,
		nullifiers: make(map[string]bool),
	}
	a.initRouter()
	go func() {
		log.Infow("starting API server", "host", conf.Host, "port", conf.Port)
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", conf.Host, conf.Port), a.router); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router, used by tests to serve the API in-process.
func (a *API) Router() *chi.Mux {
	return a.router
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", CensusesEndpoint, "method", "POST")
	a.router.Post(CensusesEndpoint, a.newCensus)
	log.Infow("register handler", "endpoint", CensusParticipantsEndpoint, "method", "POST")
	a.router.Post(CensusParticipantsEndpoint, a.addCensusParticipants)
	log.Infow("register handler", "endpoint", CensusRootEndpoint, "method", "GET")
	a.router.Get(CensusRootEndpoint, a.getCensusRoot)
	log.Infow("register handler", "endpoint", CensusSizeEndpoint, "method", "GET")
	a.router.Get(CensusSizeEndpoint, a.getCensusSize)
	log.Infow("register handler", "endpoint", CensusPublishEndpoint, "method", "POST")
	a.router.Post(CensusPublishEndpoint, a.publishCensus)
	log.Infow("register handler", "endpoint", CensusProofEndpoint, "method", "GET")
	a.router.Get(CensusProofEndpoint, a.getCensusProof)
	log.Infow("register handler", "endpoint", CensusEndpoint, "method", "DELETE")
	a.router.Delete(CensusEndpoint, a.deleteCensus)
	log.Infow("register handler", "endpoint", VotesEndpoint, "method", "POST")
	a.router.Post(VotesEndpoint, a.newVote)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	a.registerHandlers()
}

// spendNullifier records a nullifier and reports whether it was fresh.
func (a *API) spendNullifier(nullifier string) bool {
	a.nullifiersMu.Lock()
	defer a.nullifiersMu.Unlock()
	if a.nullifiers[nullifier] {
		return false
	}
	a.nullifiers[nullifier] = true
	return true
}
