package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-connectedcar/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSetupWriter(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	logging.SetupWriter(&buf, "warn", false)
	logging.WithRunID("run-1")

	log.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	log.Warn().Str("locale", "fr-FR").Msg("shown")
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "shown", line["message"])
	require.Equal(t, "run-1", line["run_id"])
	require.Equal(t, "fr-FR", line["locale"])
}

func TestSetupUnknownLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	logging.SetupWriter(&buf, "chatty", false)
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	log.Debug().Msg("hidden")
	require.Zero(t, buf.Len())
}
