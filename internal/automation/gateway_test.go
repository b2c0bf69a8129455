package automation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGateway_CallBeforeInitialize(t *testing.T) {
	gw := NewHTTPGateway(10, nil)

	_, err := gw.Call(context.Background(), ServiceOpenAI, "models", nil)
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestHTTPGateway_UnknownService(t *testing.T) {
	gw := NewHTTPGateway(10, nil)
	require.NoError(t, gw.Initialize(context.Background()))

	_, err := gw.Call(context.Background(), ExternalService("acme"), "anything", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown external service")
}

func TestHTTPGateway_ShutdownClosesGateway(t *testing.T) {
	gw := NewHTTPGateway(10, nil)
	require.NoError(t, gw.Initialize(context.Background()))
	require.NoError(t, gw.Shutdown(context.Background()))

	_, err := gw.Call(context.Background(), ServiceStripe, "charges", nil)
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}
