package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/vinaythakoor004/election-vote-blockchain/api"
	"github.com/vinaythakoor004/election-vote-blockchain/ledger"
	"github.com/vinaythakoor004/election-vote-blockchain/models"
	"github.com/vinaythakoor004/election-vote-blockchain/storage"
)

type Config struct {
	StorageDir   string
	Backend      string
	Port         int
	Difficulty   int
	MiningReward decimal.Decimal
	Candidates   []models.Candidate
	AutoSeal     bool
	MinerAddress string
	SealQueue    int
}

func main() {
	config := parseFlags()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	store, err := openStore(config)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	chainLedger, err := ledger.New(store, ledger.Config{
		Difficulty:   config.Difficulty,
		MiningReward: config.MiningReward,
		Candidates:   config.Candidates,
	})
	if err != nil {
		log.Fatalf("Failed to initialize ledger: %v", err)
	}

	sealer := ledger.NewSealer(chainLedger, config.SealQueue)
	sealer.Start()

	server := api.NewServer(chainLedger, sealer, config.AutoSeal, config.MinerAddress)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	serverChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %d...", config.Port)
		serverChan <- http.ListenAndServe(fmt.Sprintf(":%d", config.Port), mux)
	}()

	select {
	case err := <-serverChan:
		sealer.Stop()
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		sealer.Stop()
		log.Println("Server shutdown completed")
	}
}

func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.StorageDir, "storage", "data", "Directory for blockchain storage")
	flag.StringVar(&config.Backend, "backend", "badger", "Storage backend: badger or json")
	flag.IntVar(&config.Port, "port", 8080, "Server port")
	flag.IntVar(&config.Difficulty, "difficulty", ledger.DefaultDifficulty, "Leading zero characters required of a sealed block's hash")
	flag.BoolVar(&config.AutoSeal, "autoseal", false, "Seal pending transactions automatically after each accepted vote")
	flag.StringVar(&config.MinerAddress, "miner", "", "Address credited with mining rewards (empty disables rewards)")
	flag.IntVar(&config.SealQueue, "sealqueue", 16, "Capacity of the sealing request queue")

	var reward string
	var candidates string
	flag.StringVar(&reward, "reward", "1", "Mining reward amount")
	flag.StringVar(&candidates, "candidates", "candidateA=Candidate A,candidateB=Candidate B,candidateC=Candidate C",
		"Comma-separated candidate roster as id=name pairs")

	flag.Parse()

	rewardAmount, err := decimal.NewFromString(reward)
	if err != nil {
		log.Fatalf("Invalid reward amount %q: %v", reward, err)
	}
	config.MiningReward = rewardAmount

	config.Candidates, err = parseCandidates(candidates)
	if err != nil {
		log.Fatalf("Invalid candidate roster: %v", err)
	}

	return config
}

func parseCandidates(roster string) ([]models.Candidate, error) {
	if roster == "" {
		return nil, nil
	}

	var candidates []models.Candidate
	for _, entry := range strings.Split(roster, ",") {
		id, name, found := strings.Cut(strings.TrimSpace(entry), "=")
		if !found || id == "" {
			return nil, fmt.Errorf("malformed candidate entry %q, want id=name", entry)
		}
		candidates = append(candidates, models.Candidate{ID: id, Name: name})
	}
	return candidates, nil
}

func openStore(config *Config) (storage.Store, error) {
	absPath, err := filepath.Abs(config.StorageDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, err
	}

	switch config.Backend {
	case "badger":
		return storage.NewBadgerStore(filepath.Join(absPath, "badger"))
	case "json":
		return storage.NewJSONStore(absPath)
	}
	return nil, fmt.Errorf("unknown storage backend %q", config.Backend)
}
