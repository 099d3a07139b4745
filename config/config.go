package config

import (
	"github.com/evgeny-myasishchev/xts-bank/pkg/lib-core-golang/config"
	"github.com/evgeny-myasishchev/xts-bank/pkg/version"
)

var appEnv = config.NewAppEnv(version.AppName)
var configBuilder = config.NewBuilder(appEnv)

var localParams = configBuilder.NewParamsBuilder(configBuilder.WithLocalSource())

// Do not change vars below at runtime
var (
	LogLevel = localParams.NewParam("log/logLevel").String()

	ServerPort     = localParams.NewParam("server/port").Int()
	ServerPortFile = localParams.NewParam("server/portFile").String()

	StorageDriver = localParams.NewParam("storage/driver").String()
	StorageDSN    = localParams.NewParam("storage/data-source-name").String()
)

// Log represents logger specific options
type Log struct {
	Level config.StringVal
}

// Server represents tcp server settings
type Server struct {
	Port     config.IntVal
	PortFile config.StringVal
}

// Storage represents transfers journal storage settings.
// An empty driver disables the journal.
type Storage struct {
	Driver config.StringVal
	DSN    config.StringVal
}

// AppConfig is a toplevel config structure
type AppConfig struct {
	Log     Log
	Server  Server
	Storage Storage
}

// LoadAppConfig will load and initialize app config structure
func LoadAppConfig() *AppConfig {
	cfg, err := configBuilder.LoadConfig()
	if err != nil {
		panic(err)
	}

	appCfg := AppConfig{
		Log: Log{
			Level: cfg.StringParam(LogLevel),
		},
		Server: Server{
			Port:     cfg.IntParam(ServerPort),
			PortFile: cfg.StringParam(ServerPortFile),
		},
		Storage: Storage{
			Driver: cfg.StringParam(StorageDriver),
			DSN:    cfg.StringParam(StorageDSN),
		},
	}

	return &appCfg
}
