package cli

import (
	"flag"
	"fmt"
	"io"

	"journeyboard/internal/engine"
	"journeyboard/internal/engine/rules"
	"journeyboard/internal/platform/config"
)

// Config is read from JOURNEY_* variables (see config.Prefix); command
// flags override it.
type Config struct {
	BoardPath             string `env:"BOARD_PATH"`
	Store                 string `env:"STORE" envDefault:"memory"`
	DBPath                string `env:"DB_PATH" envDefault:"journeyboard.db"`
	Workers               int    `env:"WORKERS" envDefault:"4"`
	StartingCoins         int    `env:"STARTING_COINS" envDefault:"4"`
	StartingTempKnowledge int    `env:"STARTING_TEMP_KNOWLEDGE" envDefault:"1"`
	SealOrder             string `env:"SEAL_ORDER" envDefault:"unordered"`
	ObjectiveOrder        string `env:"OBJECTIVE_ORDER" envDefault:"unordered"`
	RulesScript           string `env:"RULES_SCRIPT"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat             string `env:"LOG_FORMAT" envDefault:"console"`
	OTelEnabled           bool   `env:"OTEL_ENABLED"`
	OTelEndpoint          string `env:"OTEL_ENDPOINT"`
}

// parseConfig loads the environment, then binds the flags selected by bind
// with the environment values as their defaults and parses args.
func parseConfig(name string, args []string, stderr io.Writer, bind func(*flag.FlagSet, *Config)) (Config, *flag.FlagSet, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, nil, err
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	bind(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs, nil
}

func bindBoard(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.BoardPath, "board", cfg.BoardPath, "board configuration JSON (empty for the standard board)")
}

func bindStore(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Store, "store", cfg.Store, "snapshot store: memory|sqlite")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite database path")
}

func bindGame(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.StartingCoins, "coins", cfg.StartingCoins, "starting coins per player")
	fs.IntVar(&cfg.StartingTempKnowledge, "temp-knowledge", cfg.StartingTempKnowledge, "starting temporary knowledge per player")
	fs.StringVar(&cfg.SealOrder, "seal-order", cfg.SealOrder, "seal placement rule")
	fs.StringVar(&cfg.ObjectiveOrder, "objective-order", cfg.ObjectiveOrder, "objective placement rule")
	fs.StringVar(&cfg.RulesScript, "rules", cfg.RulesScript, "Lua rules script registered as \"script\"")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "scripts replayed in parallel")
}

// registry returns the built-in rules plus the configured Lua script, and
// checks that both placement orders resolve to a registered rule.
func (c Config) registry() (*engine.RuleRegistry, error) {
	reg := rules.Default()
	if c.RulesScript != "" {
		if err := rules.LoadScriptFile(reg, rules.NameScript, c.RulesScript); err != nil {
			return nil, err
		}
	}
	known := make(map[string]bool)
	for _, n := range reg.Names() {
		known[n] = true
	}
	for _, order := range []string{c.SealOrder, c.ObjectiveOrder} {
		if order != "" && !known[order] {
			return nil, fmt.Errorf("unknown placement rule %q (have %v)", order, reg.Names())
		}
	}
	return reg, nil
}
