package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"suiswap/internal/model"
	"suiswap/internal/pool"
	"suiswap/internal/sui"
)

// Config holds the pool client settings shared by every command.
type Config struct {
	RPCURL       string
	WSURL        string
	Package      string
	Pool         string
	Admin        string
	Sender       string
	SuiType      string
	UsdcType     string
	LPType       string
	SuiDecimals  uint8
	UsdcDecimals uint8
	LPDecimals   uint8
	PrivateKey   string
	GasBudget    uint64
	Debounce     time.Duration
	CacheSize    int
	LogLevel     string
}

// WatchConfig holds the event watcher settings.
type WatchConfig struct {
	Config
	EventTypes    []string
	EventPackages []string
	Senders       []string
	MatchAll      bool
	Out           string
	PGDSN         string
	BatchSize     int
	FlushInterval time.Duration
}

// ServeConfig holds the HTTP facade settings.
type ServeConfig struct {
	Config
	Listen string
	// APIToken guards the signed routes. Empty disables them.
	APIToken string
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("SUISWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("sui-type", pool.SuiCoinType)
	v.SetDefault("sui-decimals", 9)
	v.SetDefault("usdc-decimals", 6)
	v.SetDefault("lp-decimals", 0)
	v.SetDefault("gas-budget", uint64(50_000_000))
	v.SetDefault("debounce", pool.DefaultDebounce)
	v.SetDefault("cache-size", 16)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		RPCURL:       v.GetString("rpc"),
		WSURL:        v.GetString("ws"),
		Package:      v.GetString("package"),
		Pool:         v.GetString("pool"),
		Admin:        v.GetString("admin"),
		Sender:       v.GetString("sender"),
		SuiType:      v.GetString("sui-type"),
		UsdcType:     v.GetString("usdc-type"),
		LPType:       v.GetString("lp-type"),
		SuiDecimals:  uint8(v.GetUint("sui-decimals")),
		UsdcDecimals: uint8(v.GetUint("usdc-decimals")),
		LPDecimals:   uint8(v.GetUint("lp-decimals")),
		PrivateKey:   v.GetString("private-key"),
		GasBudget:    v.GetUint64("gas-budget"),
		Debounce:     v.GetDuration("debounce"),
		CacheSize:    v.GetInt("cache-size"),
		LogLevel:     v.GetString("log-level"),
	}
}

// Load merges .env, config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}
	return fromViper(v), nil
}

// LoadWatch loads the shared settings plus the event filter and sink options.
func LoadWatch(cfgFile string, flags *pflag.FlagSet) (WatchConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return WatchConfig{}, err
	}
	v.SetDefault("match", "any")
	v.SetDefault("out", "./data/events.jsonl")
	v.SetDefault("batch-size", 50)
	v.SetDefault("flush-interval", 5*time.Second)

	cfg := WatchConfig{
		Config:        fromViper(v),
		EventTypes:    getStringSlice(v, "event-type"),
		EventPackages: getStringSlice(v, "event-package"),
		Senders:       getStringSlice(v, "event-sender"),
		Out:           v.GetString("out"),
		PGDSN:         v.GetString("pg-dsn"),
		BatchSize:     v.GetInt("batch-size"),
		FlushInterval: v.GetDuration("flush-interval"),
	}
	switch strings.ToLower(strings.TrimSpace(v.GetString("match"))) {
	case "all":
		cfg.MatchAll = true
	case "any", "":
	default:
		return WatchConfig{}, fmt.Errorf("match must be any or all, got %q", v.GetString("match"))
	}
	return cfg, nil
}

// LoadServe loads the shared settings plus the listen address.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ServeConfig{}, err
	}
	v.SetDefault("listen", "127.0.0.1:8080")
	return ServeConfig{
		Config:   fromViper(v),
		Listen:   v.GetString("listen"),
		APIToken: v.GetString("api-token"),
	}, nil
}

// PoolConfig resolves the object ids and token metadata for the pool facade.
func (c Config) PoolConfig() (pool.Config, error) {
	if c.Package == "" || c.Pool == "" {
		return pool.Config{}, fmt.Errorf("package and pool ids are required")
	}
	if c.SuiType == "" || c.UsdcType == "" || c.LPType == "" {
		return pool.Config{}, fmt.Errorf("sui-type, usdc-type and lp-type are required")
	}
	pkg, err := sui.ParseAddress(c.Package)
	if err != nil {
		return pool.Config{}, fmt.Errorf("package: %w", err)
	}
	poolID, err := sui.ParseAddress(c.Pool)
	if err != nil {
		return pool.Config{}, fmt.Errorf("pool: %w", err)
	}
	var admin, sender sui.Address
	if c.Admin != "" {
		if admin, err = sui.ParseAddress(c.Admin); err != nil {
			return pool.Config{}, fmt.Errorf("admin: %w", err)
		}
	}
	if c.Sender != "" {
		if sender, err = sui.ParseAddress(c.Sender); err != nil {
			return pool.Config{}, fmt.Errorf("sender: %w", err)
		}
	}

	return pool.Config{
		Package:   pkg,
		Pool:      poolID,
		Admin:     admin,
		Sender:    sender,
		Sui:       model.TokenMeta{Symbol: "SUI", CoinType: c.SuiType, Decimals: c.SuiDecimals},
		Usdc:      model.TokenMeta{Symbol: "USDC", CoinType: c.UsdcType, Decimals: c.UsdcDecimals},
		LP:        model.TokenMeta{Symbol: "LP", CoinType: c.LPType, Decimals: c.LPDecimals},
		GasBudget: c.GasBudget,
		CacheSize: c.CacheSize,
	}, nil
}

// Signer parses the configured private key. It returns nil when none is set.
func (c Config) Signer() (sui.Signer, error) {
	if c.PrivateKey == "" {
		return nil, nil
	}
	signer, err := sui.ParsePrivateKey(c.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	return signer, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
