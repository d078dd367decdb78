// Package app provides application initialization and dependency wiring.
//
// App is the container that assembles the session store, the Gemini
// gateway, the conversation controller, and the observability pipeline
// from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/brainora/brainora/internal/chat"
	"github.com/brainora/brainora/internal/config"
	"github.com/brainora/brainora/internal/log"
	"github.com/brainora/brainora/internal/observability"
	"github.com/brainora/brainora/internal/provider"
	"github.com/brainora/brainora/internal/session"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger
	Store  *session.Store

	// Gateway is nil until ConnectGateway runs; commands that never talk
	// to the model (sessions, login, export) skip the connection.
	Gateway *provider.Gemini

	tracerShutdown func(context.Context) error
}

// New builds the parts of the application that need no API key: logging,
// tracing, and the session store.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})

	shutdown, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}

	store, err := session.Open(cfg.DataDir, logger)
	if err != nil {
		shutdownErr := shutdown(ctx)
		if shutdownErr != nil {
			logger.Warn("tracer shutdown failed", "error", shutdownErr)
		}
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	return &App{
		Config:         cfg,
		Logger:         logger,
		Store:          store,
		tracerShutdown: shutdown,
	}, nil
}

// ConnectGateway creates the Gemini gateway. Requires an API key.
func (a *App) ConnectGateway(ctx context.Context) error {
	if err := a.Config.RequireAPIKey(); err != nil {
		return err
	}

	gw, err := provider.New(ctx, provider.Options{
		APIKey:      a.Config.GeminiAPIKey,
		ProModel:    a.Config.ProModel,
		FlashModel:  a.Config.FlashModel,
		ImageModel:  a.Config.ImageModel,
		Temperature: a.Config.Temperature,
		Logger:      a.Logger,
	})
	if err != nil {
		return fmt.Errorf("connecting gateway: %w", err)
	}
	a.Gateway = gw
	return nil
}

// NewController assembles a conversation controller on the connected
// gateway. onChange may be nil for non-interactive use.
func (a *App) NewController(onChange func()) (*chat.Controller, error) {
	if a.Gateway == nil {
		return nil, fmt.Errorf("gateway not connected")
	}
	return chat.New(chat.Config{
		Gateway:  a.Gateway,
		Store:    a.Store,
		Logger:   a.Logger,
		OnChange: onChange,
	})
}

// Close gracefully shuts down all resources, flushing pending spans.
func (a *App) Close(ctx context.Context) error {
	a.Logger.Info("shutting down")
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			return fmt.Errorf("shutting down tracer: %w", err)
		}
	}
	return nil
}
