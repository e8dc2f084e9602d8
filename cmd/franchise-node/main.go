package main

import (
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"
	"github.com/vocdoni/zk-franchise-proof/api"
	"github.com/vocdoni/zk-franchise-proof/census"
	"github.com/vocdoni/zk-franchise-proof/log"
	"github.com/vocdoni/zk-franchise-proof/prover"
	"github.com/vocdoni/zk-franchise-proof/types"
	kvdb "go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/pebbledb"
)

// Config contains the main configuration parameters of the node.
type Config struct {
	dir, logLevel, host string
	port                int
	levels              int
}

func main() {
	config := Config{}

	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	flag.StringVarP(&config.dir, "dir", "d", filepath.Join(home, ".franchise-node"),
		"storage data directory")
	flag.StringVarP(&config.logLevel, "logLevel", "l", "info", "log level (info, debug, warn, error)")
	flag.StringVar(&config.host, "host", "0.0.0.0", "network address for the HTTP API")
	flag.IntVarP(&config.port, "port", "p", 8080, "network port for the HTTP API")
	flag.IntVar(&config.levels, "levels", types.CensusProofLevels,
		"number of census tree levels the circuit proves")

	flag.CommandLine.SortFlags = false
	flag.Parse()

	log.Init(config.logLevel, "stdout", nil)

	database, err := pebbledb.New(kvdb.Options{Path: filepath.Join(config.dir, "censusdb")})
	if err != nil {
		log.Fatal(err)
	}
	censusDB, err := census.NewCensusDB(database)
	if err != nil {
		log.Fatal(err)
	}

	// Reuse the proving artifacts across restarts; the Groth16 setup for a
	// deep census tree takes a while.
	artifactsDir := filepath.Join(config.dir, "artifacts")
	ps, err := prover.Load(artifactsDir, config.levels)
	if err != nil {
		log.Infow("cannot reuse proving artifacts, running setup",
			"err", err.Error(), "levels", config.levels)
		if ps, err = prover.Setup(config.levels); err != nil {
			log.Fatal(err)
		}
		if err := ps.Store(artifactsDir); err != nil {
			log.Fatal(err)
		}
	}

	if _, err := api.New(&api.Config{
		Host:     config.host,
		Port:     config.port,
		CensusDB: censusDB,
		Prover:   ps,
	}); err != nil {
		log.Fatal(err)
	}
	select {}
}
