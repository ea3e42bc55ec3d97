package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/holdr-id/wallet-node/internal/log"
)

// Configuration holds the project configuration
type Configuration struct {
	ServerUrl                    string
	ServerPort                   int
	NativeProofGenerationEnabled bool
	UniversalLinkBaseUrl         string        `mapstructure:"UniversalLinkBaseUrl"`
	Database                     Database      `mapstructure:"Database"`
	Cache                        Cache         `mapstructure:"Cache"`
	Wallet                       Wallet        `mapstructure:"Wallet"`
	Log                          Log           `mapstructure:"Log"`
	Ethereum                     Ethereum      `mapstructure:"Ethereum"`
	Prover                       Prover        `mapstructure:"Prover"`
	Circuit                      Circuit       `mapstructure:"Circuit"`
	QRStoreTTL                   time.Duration `mapstructure:"QRStoreTTL"`
	SessionTTL                   time.Duration `mapstructure:"SessionTTL"`
	OffChainVerification         bool          `mapstructure:"OffChainVerification" tip:"Verify received proofs locally with the circuit verification key instead of the on-chain verifier"`
}

// Database has the database configuration
// URL: The database connection string
type Database struct {
	URL string `mapstructure:"Url" tip:"The Datasource name locator"`
}

// Cache provider selection
const (
	CacheProviderRedis  = "redis"
	CacheProviderMemory = "memory"
)

// Cache configurations
type Cache struct {
	Provider string `mapstructure:"Provider" tip:"Cache provider: redis or memory"`
	Url      string `mapstructure:"Url" tip:"The redis url to use as a cache"`
}

// Wallet holds the holder key configuration. The seed is accepted here for
// development setups only; production deployments are expected to feed it
// from a secret store.
type Wallet struct {
	SeedHex string `mapstructure:"SeedHex" tip:"Hex encoded 32 byte seed for the holder BJJ key"`
}

// Ethereum struct
type Ethereum struct {
	URL                string        `tip:"Ethereum url"`
	VerifierContract   string        `tip:"Verifier contract address"`
	ChainID            int64         `tip:"Chain id"`
	RPCResponseTimeout time.Duration `tip:"RPC Response timeout"`
	TransactorKey      string        `tip:"Hex encoded ECDSA key used to record verifications on chain. Read only calls work without it"`
}

// Prover struct
type Prover struct {
	ServerURL       string
	ResponseTimeout time.Duration
}

// Circuit struct
type Circuit struct {
	Path string `tip:"Circuit path"`
}

// Log holds runtime configurations
//
// Level: The minimum log level to show on logs. Values can be
//
//	 -4: Debug
//		0: Info
//		4: Warning
//		8: Error
//	 The default log level is debug
//
// Mode: Log mode is the format of the log. It can be text or json
// 1: JSON
// 2: Text
// The default log format is JSON
type Log struct {
	Level int `mapstructure:"Level" tip:"Minimum level to log: (-4:Debug, 0:Info, 4:Warning, 8:Error)"`
	Mode  int `mapstructure:"Mode" tip:"Log format (1: JSON, 2:Structured text)"`
}

// Sanitize performs some basic checks and sanitizations in the configuration.
// Returns nil if config is acceptable, error otherwise.
func (c *Configuration) Sanitize() error {
	sUrl, err := c.validateServerUrl()
	if err != nil {
		return fmt.Errorf("serverUrl is not a valid URL <%s>: %w", c.ServerUrl, err)
	}
	c.ServerUrl = sUrl

	if c.Circuit.Path == "" {
		return fmt.Errorf("a circuit artifacts path must be provided")
	}
	if !c.NativeProofGenerationEnabled && c.Prover.ServerURL == "" {
		return fmt.Errorf("a prover server URL must be provided when the native prover is disabled")
	}
	if c.QRStoreTTL == 0 {
		c.QRStoreTTL = 5 * time.Minute
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 30 * time.Minute
	}
	return nil
}

func (c *Configuration) validateServerUrl() (string, error) {
	sUrl, err := url.ParseRequestURI(c.ServerUrl)
	if err != nil {
		return c.ServerUrl, err
	}
	// ParseRequestURI reads "localhost:8001" as scheme "localhost", so an
	// explicit scheme and host check is needed to reject relative urls
	if (sUrl.Scheme != "http" && sUrl.Scheme != "https") || sUrl.Host == "" {
		return c.ServerUrl, fmt.Errorf("server URL must be an absolute http or https URL")
	}
	sUrl.RawQuery = ""
	return strings.Trim(strings.Trim(sUrl.String(), "/"), "?"), nil
}

// Load loads the configuration from a file
func Load(fileName string) (*Configuration, error) {
	bindEnv()
	pathFlag := viper.GetString("config")
	if _, err := os.Stat(pathFlag); err == nil {
		ext := filepath.Ext(pathFlag)
		if len(ext) > 1 {
			ext = ext[1:]
		}
		name := strings.Split(filepath.Base(pathFlag), ".")[0]
		viper.AddConfigPath(".")
		viper.SetConfigName(name)
		viper.SetConfigType(ext)
	} else {
		viper.AddConfigPath(getWorkingDirectory())
		viper.SetConfigType("toml")
		if fileName == "" {
			viper.SetConfigName("config")
		} else {
			viper.SetConfigName(fileName)
		}
	}

	config := &Configuration{
		Log: Log{
			Level: log.LevelDebug,
			Mode:  log.OutputText,
		},
		Cache: Cache{
			Provider: CacheProviderMemory,
		},
	}
	ctx := context.Background()
	if err := viper.ReadInConfig(); err != nil {
		log.Info(ctx, "config file not found, relying on env vars and defaults")
	}
	if err := viper.Unmarshal(config); err != nil {
		log.Error(ctx, "error unmarshalling config file", err)
	}
	return config, nil
}

func bindEnv() {
	viper.SetEnvPrefix("WALLET")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("ServerUrl", "WALLET_SERVER_URL")
	_ = viper.BindEnv("ServerPort", "WALLET_SERVER_PORT")
	_ = viper.BindEnv("NativeProofGenerationEnabled", "WALLET_NATIVE_PROOF_GENERATION_ENABLED")
	_ = viper.BindEnv("UniversalLinkBaseUrl", "WALLET_UNIVERSAL_LINK_BASE_URL")
	_ = viper.BindEnv("Database.Url", "WALLET_DATABASE_URL")
	_ = viper.BindEnv("Cache.Provider", "WALLET_CACHE_PROVIDER")
	_ = viper.BindEnv("Cache.Url", "WALLET_CACHE_URL")
	_ = viper.BindEnv("Wallet.SeedHex", "WALLET_SEED_HEX")
	_ = viper.BindEnv("Ethereum.URL", "WALLET_ETHEREUM_URL")
	_ = viper.BindEnv("Ethereum.VerifierContract", "WALLET_ETHEREUM_VERIFIER_CONTRACT")
	_ = viper.BindEnv("Ethereum.ChainID", "WALLET_ETHEREUM_CHAIN_ID")
	_ = viper.BindEnv("Ethereum.TransactorKey", "WALLET_ETHEREUM_TRANSACTOR_KEY")
	_ = viper.BindEnv("Prover.ServerURL", "WALLET_PROVER_SERVER_URL")
	_ = viper.BindEnv("Prover.ResponseTimeout", "WALLET_PROVER_RESPONSE_TIMEOUT")
	_ = viper.BindEnv("Circuit.Path", "WALLET_CIRCUIT_PATH")
	_ = viper.BindEnv("QRStoreTTL", "WALLET_QR_STORE_TTL")
	_ = viper.BindEnv("SessionTTL", "WALLET_SESSION_TTL")
	_ = viper.BindEnv("OffChainVerification", "WALLET_OFFCHAIN_VERIFICATION")
	_ = viper.BindEnv("Log.Level", "WALLET_LOG_LEVEL")
	_ = viper.BindEnv("Log.Mode", "WALLET_LOG_MODE")
}

func getWorkingDirectory() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
