package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete auction house configuration.
type Config struct {
	Auction AuctionConfig `json:"auction" yaml:"auction"`
	Seed    SeedConfig    `json:"seed" yaml:"seed"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Session []Step        `json:"session,omitempty" yaml:"session,omitempty"`
}

// AuctionConfig contains engine parameters.
type AuctionConfig struct {
	// BidTTL is the expiry timer applied to every bid.
	BidTTL string `json:"bid_ttl" yaml:"bid_ttl"`
	// NominalTTL is the recorded bid deadline. It is configured separately
	// from BidTTL; the two disagreeing is tolerated but worth a warning,
	// see TTLMismatch.
	NominalTTL string `json:"nominal_ttl" yaml:"nominal_ttl"`
	// FreeAgentTeam is the team ID of the pool whose players are always
	// biddable without a listing.
	FreeAgentTeam string `json:"free_agent_team" yaml:"free_agent_team"`
	// AllowRelistAfterHistory permits relisting players that have already
	// been bid on.
	AllowRelistAfterHistory bool `json:"allow_relist_after_history" yaml:"allow_relist_after_history"`
}

// SeedConfig locates the initial team/player data.
type SeedConfig struct {
	TeamsFile   string `json:"teams_file" yaml:"teams_file"`
	PlayersFile string `json:"players_file" yaml:"players_file"`
}

// JournalConfig controls where drained bids go.
type JournalConfig struct {
	Type      string `json:"type" yaml:"type"` // "csv" or "sqlite"
	ExportDir string `json:"export_dir,omitempty" yaml:"export_dir,omitempty"`
	DBPath    string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig controls logging verbosity.
type LogConfig struct {
	Level string `json:"level" yaml:"level"` // debug | info | warn | error
}

// Step is one scripted action in a session replay: list, bid, withdraw,
// unlist, drain, or wait.
type Step struct {
	Action string `json:"action" yaml:"action"`
	Player string `json:"player,omitempty" yaml:"player,omitempty"`
	Team   string `json:"team,omitempty" yaml:"team,omitempty"`
	Amount int64  `json:"amount,omitempty" yaml:"amount,omitempty"`
	Wage   int64  `json:"wage,omitempty" yaml:"wage,omitempty"`
	Price  int64  `json:"price,omitempty" yaml:"price,omitempty"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
	Delay  string `json:"delay,omitempty" yaml:"delay,omitempty"` // e.g. "1s", "500ms"
}

// ParseDuration converts the step delay to a time.Duration.
func (s Step) ParseDuration() (time.Duration, error) {
	if s.Delay == "" {
		return 0, nil
	}
	return time.ParseDuration(s.Delay)
}

// ParseBidTTL returns the expiry timer duration.
func (a AuctionConfig) ParseBidTTL() (time.Duration, error) {
	return time.ParseDuration(a.BidTTL)
}

// ParseNominalTTL returns the recorded deadline duration.
func (a AuctionConfig) ParseNominalTTL() (time.Duration, error) {
	return time.ParseDuration(a.NominalTTL)
}

// TTLMismatch reports whether the expiry timer and the recorded deadline
// disagree. Callers should warn rather than pick one silently.
func (a AuctionConfig) TTLMismatch() bool {
	ttl, err1 := a.ParseBidTTL()
	nom, err2 := a.ParseNominalTTL()
	return err1 == nil && err2 == nil && ttl != nom
}

// LoadFromFile loads configuration from a file (YAML or JSON based on
// content), applies .env and environment overrides, validates, and returns.
func LoadFromFile(path string) (*Config, error) {
	// Load .env if present; missing files are fine.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AUCTION_BID_TTL"); v != "" {
		cfg.Auction.BidTTL = v
	}
	if v := os.Getenv("AUCTION_NOMINAL_TTL"); v != "" {
		cfg.Auction.NominalTTL = v
	}
	if v := os.Getenv("AUCTION_FREE_AGENT_TEAM"); v != "" {
		cfg.Auction.FreeAgentTeam = v
	}
	if v := os.Getenv("AUCTION_TEAMS_FILE"); v != "" {
		cfg.Seed.TeamsFile = v
	}
	if v := os.Getenv("AUCTION_PLAYERS_FILE"); v != "" {
		cfg.Seed.PlayersFile = v
	}
	if v := os.Getenv("AUCTION_JOURNAL"); v != "" {
		cfg.Journal.Type = v
	}
	if v := os.Getenv("AUCTION_EXPORT_DIR"); v != "" {
		cfg.Journal.ExportDir = v
	}
	if v := os.Getenv("AUCTION_DB_PATH"); v != "" {
		cfg.Journal.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	ttl, err := c.Auction.ParseBidTTL()
	if err != nil {
		return fmt.Errorf("auction.bid_ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("auction.bid_ttl must be positive")
	}
	nom, err := c.Auction.ParseNominalTTL()
	if err != nil {
		return fmt.Errorf("auction.nominal_ttl: %w", err)
	}
	if nom <= 0 {
		return fmt.Errorf("auction.nominal_ttl must be positive")
	}
	if c.Seed.TeamsFile == "" || c.Seed.PlayersFile == "" {
		return fmt.Errorf("seed.teams_file and seed.players_file are required")
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && c.Journal.ExportDir == "" {
		return fmt.Errorf("journal.export_dir required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path required for SQLite type")
	}
	for i, s := range c.Session {
		if _, err := s.ParseDuration(); err != nil {
			return fmt.Errorf("session step %d: delay: %w", i, err)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Auction: AuctionConfig{
			BidTTL:        "1m",
			NominalTTL:    "12h",
			FreeAgentTeam: "rotw",
		},
		Seed: SeedConfig{
			TeamsFile:   "./data/teams.csv",
			PlayersFile: "./data/players.csv",
		},
		Journal: JournalConfig{
			Type:      "csv",
			ExportDir: "./expired_bids",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
