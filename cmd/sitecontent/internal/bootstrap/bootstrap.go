package bootstrap

import (
	"fmt"
	"strings"

	sitecontent "github.com/goliatone/go-sitecontent"
	"github.com/goliatone/go-sitecontent/internal/di"
	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// Options captures configuration for CLI bootstraps.
type Options struct {
	ConfigPath     string
	LogLevel       string
	CMSURL         string
	KeepAlive      *bool
	LoggerProvider interfaces.LoggerProvider
	DIOptions      []di.Option
}

// Module wraps the site content module and the CLI logger.
type Module struct {
	Module *sitecontent.Module
	Logger interfaces.Logger
}

// Builder constructs a Module. Commands take it as a dependency so tests can
// route the CMS through a fake transport.
type Builder func(Options) (*Module, error)

// BuildModule loads the configuration, applies flag overrides and constructs
// the module.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := sitecontent.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if url := strings.TrimSpace(opts.CMSURL); url != "" {
		cfg.Content.BaseURL = url
	}
	if opts.KeepAlive != nil {
		cfg.Features.KeepAlive = *opts.KeepAlive
	}

	diOpts := append([]di.Option{}, opts.DIOptions...)
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := sitecontent.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise site module: %w", err)
	}

	return &Module{
		Module: module,
		Logger: logging.ModuleLogger(module.Container().LoggerProvider(), "site.cli"),
	}, nil
}
