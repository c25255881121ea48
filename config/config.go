package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	ChainConfig      ChainConfig      `json:"chain_config"`
	SettlementConfig SettlementConfig `json:"settlement_config"`
	APIConfig        APIConfig        `json:"api_config"`
	LogConfig        LogConfig        `json:"log_config"`
	AlertConfig      AlertConfig      `json:"alert_config"`
	MetricsConfig    MetricsConfig    `json:"metrics_config"`
	DBConfig         DBConfig         `json:"db_config"`
}

type ChainConfig struct {
	KeyType         string   `json:"key_type"`
	AWSRegion       string   `json:"aws_region"`
	AWSSecretName   string   `json:"aws_secret_name"`
	PrivateKey      string   `json:"private_key"`
	RPCAddrs        []string `json:"rpc_addrs"`
	ContractAddress string   `json:"contract_address"`
	ChainId         uint64   `json:"chain_id"`
	GasLimit        uint64   `json:"gas_limit"`
	StartHeight     uint64   `json:"start_height"`
}

func (cfg *ChainConfig) Validate() {
	if len(cfg.RPCAddrs) == 0 {
		panic("rpc_addrs should not be empty")
	}
	if cfg.ContractAddress == "" {
		panic("contract_address should not be empty")
	}
	if cfg.GasLimit == 0 {
		panic("gas_limit should be larger than 0")
	}
}

type SettlementConfig struct {
	TickIntervalSeconds   uint64 `json:"tick_interval_seconds"`
	BatchSize             int    `json:"batch_size"`
	StuckThresholdSeconds uint64 `json:"stuck_threshold_seconds"`
	MinCreatorDeposit     string `json:"min_creator_deposit"`
}

func (cfg *SettlementConfig) Validate() {
	if cfg.TickIntervalSeconds == 0 {
		panic("tick_interval_seconds should be larger than 0")
	}
	if cfg.BatchSize <= 0 {
		panic("batch_size should be larger than 0")
	}
}

type APIConfig struct {
	Port uint16 `json:"port"`
}

type LogConfig struct {
	Level                        string `json:"level"`
	Filename                     string `json:"filename"`
	MaxFileSizeInMB              int    `json:"max_file_size_in_mb"`
	MaxBackupsOfLogFiles         int    `json:"max_backups_of_log_files"`
	MaxAgeToRetainLogFilesInDays int    `json:"max_age_to_retain_log_files_in_days"`
	UseConsoleLogger             bool   `json:"use_console_logger"`
	UseFileLogger                bool   `json:"use_file_logger"`
	Compress                     bool   `json:"compress"`
}

func (cfg *LogConfig) Validate() {
	if cfg.UseFileLogger {
		if cfg.Filename == "" {
			panic("filename should not be empty if use file logger")
		}
		if cfg.MaxFileSizeInMB <= 0 {
			panic("max_file_size_in_mb should be larger than 0 if use file logger")
		}
		if cfg.MaxBackupsOfLogFiles <= 0 {
			panic("max_backups_off_log_files should be larger than 0 if use file logger")
		}
	}
}

type MetricsConfig struct {
	Port uint16 `json:"port"`
}

type DBConfig struct {
	Dialect       string `json:"dialect"`
	DBPath        string `json:"db_path"`
	KeyType       string `json:"key_type"`
	AWSRegion     string `json:"aws_region"`
	AWSSecretName string `json:"aws_secret_name"`
	Password      string `json:"password"`
	Username      string `json:"username"`
	MaxIdleConns  int    `json:"max_idle_conns"`
	MaxOpenConns  int    `json:"max_open_conns"`
	DebugMode     bool   `json:"debug_mode"`
}

func (cfg *DBConfig) Validate() {
	if cfg.Dialect != DBDialectMysql {
		panic(fmt.Sprintf("only %s supported", DBDialectMysql))
	}
	if cfg.Username == "" || cfg.DBPath == "" {
		panic("db config is not correct")
	}
}

func (cfg *Config) Validate() {
	cfg.ChainConfig.Validate()
	cfg.SettlementConfig.Validate()
	cfg.LogConfig.Validate()
	cfg.DBConfig.Validate()
}

type AlertConfig struct {
	Identity       string `json:"identity"`
	TelegramBotId  string `json:"telegram_bot_id"`
	TelegramChatId string `json:"telegram_chat_id"`
}

func ParseConfigFromJson(content string) *Config {
	var config Config
	if err := json.Unmarshal([]byte(content), &config); err != nil {
		panic(err)
	}
	return &config
}

func ParseConfigFromFile(filePath string) *Config {
	bz, err := os.ReadFile(filePath)
	if err != nil {
		panic(err)
	}

	var config Config
	if err := json.Unmarshal(bz, &config); err != nil {
		panic(err)
	}

	config.Validate()

	return &config
}
