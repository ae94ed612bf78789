package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/semtext/pkg/semtext/convert"
	"github.com/cognicore/semtext/pkg/semtext/urlmap"
)

// Loader loads the configuration file and constructs components
type Loader struct {
	ConfigPath string
}

// Components holds the configured converters
type Components struct {
	Config         *Config
	Mapper         urlmap.IDMapper
	NLText         *convert.NLTextConverter
	SemanticString *convert.SemanticStringConverter
	Reviewed       bool
}

// Load reads the configuration file, if any, and returns initialized components
func (l *Loader) Load(logger *zap.Logger) (*Components, error) {
	cfg := Default()
	if l.ConfigPath != "" {
		loaded, err := Load(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	return Build(cfg, logger)
}

// Build constructs components from cfg
func Build(cfg *Config, logger *zap.Logger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var mapper urlmap.IDMapper
	switch cfg.Mapper.Kind {
	case MapperClient:
		client, err := urlmap.NewClient(cfg.Mapper.BaseURL, logger.Named("urlmap"))
		if err != nil {
			return nil, fmt.Errorf("build client mapper: %w", err)
		}
		mapper = client
	default:
		mapper = urlmap.New(cfg.Mapper.EntityPrefix, cfg.Mapper.ConceptPrefix)
	}

	opts := convert.Options{Mapper: mapper, Logger: logger.Named("convert")}
	return &Components{
		Config:         cfg,
		Mapper:         mapper,
		NLText:         convert.NewNLText(opts),
		SemanticString: convert.NewSemanticString(opts),
		Reviewed:       cfg.Reviewed,
	}, nil
}
