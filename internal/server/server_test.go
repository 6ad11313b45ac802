package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/enhanced-calculator/internal/config"
)

func TestNewRequiresDependencies(t *testing.T) {
	log := zerolog.Nop()

	_, err := New(nil, &log, nil)
	assert.Error(t, err)

	_, err = New(config.DefaultConfig(), nil, nil)
	assert.Error(t, err)
}

func TestStartWithoutSetup(t *testing.T) {
	log := zerolog.Nop()
	s, err := New(config.DefaultConfig(), &log, nil)
	require.NoError(t, err)

	assert.EqualError(t, s.Start(), "HTTP server not initialized")
}

func TestSetupHTTPServerUsesConfig(t *testing.T) {
	log := zerolog.Nop()
	cfg := config.DefaultConfig()
	cfg.Server.Port = "3100"

	s, err := New(cfg, &log, nil)
	require.NoError(t, err)

	s.SetupHTTPServer(http.NotFoundHandler())
	require.NotNil(t, s.httpServer)
	assert.Equal(t, ":3100", s.httpServer.Addr)
	assert.Equal(t, 10*time.Second, s.httpServer.ReadTimeout)
	assert.Equal(t, 60*time.Second, s.httpServer.IdleTimeout)
}

func TestShutdownBeforeStart(t *testing.T) {
	log := zerolog.Nop()
	s, err := New(config.DefaultConfig(), &log, nil)
	require.NoError(t, err)

	s.SetupHTTPServer(http.NotFoundHandler())
	assert.NoError(t, s.Shutdown(context.Background()))
}
