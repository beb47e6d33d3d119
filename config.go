package sitecontent

import (
	"os"

	"github.com/goliatone/go-sitecontent/internal/runtimeconfig"
)

var (
	ErrContentBaseURLRequired  = runtimeconfig.ErrContentBaseURLRequired
	ErrContentBaseURLInvalid   = runtimeconfig.ErrContentBaseURLInvalid
	ErrQueryRetryInvalid       = runtimeconfig.ErrQueryRetryInvalid
	ErrQueryRetryDelayInvalid  = runtimeconfig.ErrQueryRetryDelayInvalid
	ErrSnapshotsFeatureMissing = runtimeconfig.ErrSnapshotsFeatureMissing
	ErrSnapshotDriverUnknown   = runtimeconfig.ErrSnapshotDriverUnknown
	ErrSnapshotDSNRequired     = runtimeconfig.ErrSnapshotDSNRequired
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	ContentConfig  = runtimeconfig.ContentConfig
	QueryConfig    = runtimeconfig.QueryConfig
	SiteConfig     = runtimeconfig.SiteConfig
	SnapshotConfig = runtimeconfig.SnapshotConfig
	ServerConfig   = runtimeconfig.ServerConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	Features       = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads path (optional) and overlays the process environment.
func LoadConfig(path string) (Config, error) {
	cfg, err := runtimeconfig.LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	return runtimeconfig.ApplyEnv(cfg, os.LookupEnv)
}
