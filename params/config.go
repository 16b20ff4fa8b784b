// Package params loads and verifies the bridge TOML configuration.
package params

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tonswap/TON-EVM-Bridge/log"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
)

// default knobs applied when the config file leaves them zero
const (
	defaultSwapTTLSeconds   = 3600
	defaultSwapGrace        = 300
	defaultDepositScanLives = 20
	defaultMaxPendingPerIP  = 10
)

// BridgeConfig top level config
type BridgeConfig struct {
	Identifier string

	EthChain   *tokens.ChainConfig
	EthGateway *tokens.GatewayConfig
	TonChain   *tokens.ChainConfig
	TonGateway *tokens.GatewayConfig

	Pairs []*tokens.TokenPairConfig

	Server *ServerConfig
	Risk   *RiskConfig
	Email  *EmailConfig
}

// ServerConfig swap server config
type ServerConfig struct {
	MongoDB   *MongoDBConfig
	APIServer *APIServerConfig
	Queue     QueueConfig

	KeystoreFile string
	MatchDBDir   string

	MaxPendingSwapsPerIP int64
	SwapTTLSeconds       int64
	SwapGraceSeconds     int64
	DepositScanLives     int64
}

// MongoDBConfig mongodb connection config
type MongoDBConfig struct {
	DBURL    string
	DBName   string
	UserName string `json:"-"`
	Password string `json:"-"`
}

// APIServerConfig rest and rpc server config
type APIServerConfig struct {
	Port                 int
	AllowedOrigins       []string
	MaxRequestsPerSecond float64
}

// QueueConfig pipeline scheduling config
type QueueConfig struct {
	ClaimIntervalMs     int64
	RetryBackoffSeconds int64
	TransferAttempts    int
	CollectAttempts     int
}

// RiskConfig reserve audit config
type RiskConfig struct {
	CheckIntervalSeconds int64
	AlertCooldownSeconds int64
	MinReserveEth        float64
	MinReserveTon        float64
}

// EmailConfig alert mail config
type EmailConfig struct {
	Server       string
	Port         int
	From         string
	FromPassword string `json:"-"`
	To           []string
}

var (
	bridgeConfig   *BridgeConfig
	configFilePath string
)

// GetConfig get the loaded bridge config
func GetConfig() *BridgeConfig {
	return bridgeConfig
}

// SetConfig set the bridge config, mainly used in testing
func SetConfig(config *BridgeConfig) {
	bridgeConfig = config
}

// GetServerConfig get the server section of the loaded config
func GetServerConfig() *ServerConfig {
	if bridgeConfig == nil {
		return nil
	}
	return bridgeConfig.Server
}

// GetIdentifier get the configured bridge identifier
func GetIdentifier() string {
	if bridgeConfig == nil {
		return ""
	}
	return bridgeConfig.Identifier
}

// LoadConfig load and verify the config file, panics on any problem as
// the server must not start half configured
func LoadConfig(configFile string) *BridgeConfig {
	if configFile == "" {
		log.Fatal("must specify config file")
	}
	if !strings.HasSuffix(configFile, ".toml") {
		log.Fatal("config file must be toml format", "configFile", configFile)
	}
	if _, err := os.Stat(configFile); err != nil {
		log.Fatal("config file does not exist", "configFile", configFile, "err", err)
	}

	config, err := loadConfigFile(configFile)
	if err != nil {
		log.Fatal("load config failed", "configFile", configFile, "err", err)
	}
	if err := config.CheckConfig(); err != nil {
		log.Fatal("verify config failed", "configFile", configFile, "err", err)
	}

	bridgeConfig = config
	configFilePath, _ = filepath.Abs(configFile)
	log.Info("load config success", "configFile", configFilePath, "identifier", config.Identifier, "pairs", len(config.Pairs))
	return bridgeConfig
}

func loadConfigFile(configFile string) (*BridgeConfig, error) {
	config := &BridgeConfig{}
	if _, err := toml.DecodeFile(configFile, config); err != nil {
		return nil, err
	}
	return config, nil
}

// CheckConfig verify the whole config and fill defaults
func (c *BridgeConfig) CheckConfig() error {
	if c.Identifier == "" {
		return errors.New("must config nonempty 'Identifier'")
	}
	if c.EthChain == nil || c.TonChain == nil {
		return errors.New("must config both 'EthChain' and 'TonChain'")
	}
	if c.EthGateway == nil || len(c.EthGateway.APIAddress) == 0 {
		return errors.New("must config 'EthGateway' with at least one APIAddress")
	}
	if c.TonGateway == nil || len(c.TonGateway.APIAddress) == 0 {
		return errors.New("must config 'TonGateway' with at least one APIAddress")
	}
	c.EthChain.Blockchain = tokens.ChainETH
	c.TonChain.Blockchain = tokens.ChainTON
	if err := c.EthChain.CheckConfig(); err != nil {
		return err
	}
	if err := c.TonChain.CheckConfig(); err != nil {
		return err
	}
	if len(c.Pairs) == 0 {
		return errors.New("must config at least one token pair")
	}
	for _, pair := range c.Pairs {
		if err := pair.CheckConfig(); err != nil {
			return fmt.Errorf("pair %v: %w", pair.PairID, err)
		}
	}
	if c.Server != nil {
		if err := c.Server.CheckConfig(); err != nil {
			return err
		}
	}
	if c.Email != nil {
		if err := c.Email.CheckConfig(); err != nil {
			return err
		}
	}
	return nil
}

// CheckConfig verify the server section and fill defaults
func (c *ServerConfig) CheckConfig() error {
	if c.MongoDB == nil {
		return errors.New("server must config 'MongoDB'")
	}
	if c.MongoDB.DBURL == "" || c.MongoDB.DBName == "" {
		return errors.New("server must config 'MongoDB' DBURL and DBName")
	}
	if c.APIServer == nil || c.APIServer.Port == 0 {
		return errors.New("server must config 'APIServer' with nonzero Port")
	}
	if c.KeystoreFile == "" {
		return errors.New("server must config 'KeystoreFile'")
	}
	if c.SwapTTLSeconds <= 0 {
		c.SwapTTLSeconds = defaultSwapTTLSeconds
	}
	if c.SwapGraceSeconds <= 0 {
		c.SwapGraceSeconds = defaultSwapGrace
	}
	if c.DepositScanLives <= 0 {
		c.DepositScanLives = defaultDepositScanLives
	}
	if c.MaxPendingSwapsPerIP <= 0 {
		c.MaxPendingSwapsPerIP = defaultMaxPendingPerIP
	}
	return nil
}

// CheckConfig verify the email section
func (c *EmailConfig) CheckConfig() error {
	if c.Server == "" || c.Port == 0 || c.From == "" || len(c.To) == 0 {
		return errors.New("wrong email config, must config Server, Port, From and To")
	}
	return nil
}
