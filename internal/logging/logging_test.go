package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestComponentTagsJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	logger := Component("scraper")
	logger.Debug().Int("prompts", 3).Msg("fetched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "scraper", entry["component"])
	require.Equal(t, "fetched", entry["message"])
	require.EqualValues(t, 3, entry["prompts"])
}

func TestInitFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "loud", Format: "json", Output: &buf})
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	log := Component("x")
	log.Debug().Msg("hidden")
	require.Zero(t, buf.Len())
}
