package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SriEnvVacioCaeEnDev(t *testing.T) {
	// Un SRI_ENV vacío no debe dejar un ambiente desconocido: en dev el
	// orquestador simula la autorización y nunca necesita el cliente SOAP.
	t.Setenv("SRI_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.SRI.AppEnv)
}

func TestLoad_SriEnvDesconocidoCaeEnDev(t *testing.T) {
	t.Setenv("SRI_ENV", "staging")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.SRI.AppEnv)
}

func TestLoad_SriEnvValidoSeConserva(t *testing.T) {
	t.Setenv("SRI_ENV", "prod")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.SRI.AppEnv)
}

func TestNormalizeSriEnv(t *testing.T) {
	assert.Equal(t, "dev", normalizeSriEnv(""))
	assert.Equal(t, "dev", normalizeSriEnv("produccion"))
	assert.Equal(t, "test", normalizeSriEnv("test"))
	assert.Equal(t, "prod", normalizeSriEnv("prod"))
}
