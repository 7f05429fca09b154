package config

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func TestLoad_Defaults(t *testing.T) {
	freezeClock(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, DefaultTRIURLTemplate, cfg.TRIURLTemplate)
	assert.Equal(t, "data/2022_NAICS_Descriptions.xlsx", cfg.NAICSPath)
	assert.Equal(t, "data/Texas_County_Boundaries_Detailed.geojson", cfg.CountiesPath)
	assert.Empty(t, cfg.ToxicityPath)
	assert.Equal(t, "data/TCEQ_Stars.csv", cfg.PointSourcePath)
	assert.Equal(t, 60*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 8, cfg.DatasetCacheSize)
	assert.Equal(t, domain.UnitPolicyStrict, cfg.UnitPolicy)
	assert.Equal(t, 1987, cfg.MinYear)
	assert.Equal(t, 2022, cfg.MaxYear)
	assert.Equal(t, 2022, cfg.DefaultYear)
	assert.Equal(t, "TX", cfg.DefaultRegion)
	assert.Equal(t, "tri", cfg.DefaultVariant)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "tri-county-summaries", cfg.KafkaSummaryTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	freezeClock(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("TRI_URL_TEMPLATE", "http://mirror.local/tri/{year}_{region}.csv")
	t.Setenv("TOXICITY_PATH", "data/toxicity.csv")
	t.Setenv("FACILITIES_PATH", "https://example.org/facilities.csv")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("DATASET_CACHE_SIZE", "3")
	t.Setenv("UNIT_POLICY", "legacy")
	t.Setenv("MIN_YEAR", "2010")
	t.Setenv("MAX_YEAR", "2021")
	t.Setenv("DEFAULT_YEAR", "2020")
	t.Setenv("DEFAULT_REGION", "us")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SUMMARY_TOPIC", "summaries")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://mirror.local/tri/{year}_{region}.csv", cfg.TRIURLTemplate)
	assert.Equal(t, "data/toxicity.csv", cfg.ToxicityPath)
	assert.Equal(t, "https://example.org/facilities.csv", cfg.FacilitiesPath)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 3, cfg.DatasetCacheSize)
	assert.Equal(t, domain.UnitPolicyLegacy, cfg.UnitPolicy)
	assert.Equal(t, 2010, cfg.MinYear)
	assert.Equal(t, 2021, cfg.MaxYear)
	assert.Equal(t, 2020, cfg.DefaultYear)
	assert.Equal(t, "US", cfg.DefaultRegion)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "summaries", cfg.KafkaSummaryTopic)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		msg  string
	}{
		{"shutdown timeout", "SHUTDOWN_TIMEOUT", "bad", "SHUTDOWN_TIMEOUT"},
		{"fetch timeout", "FETCH_TIMEOUT", "-1s", "FETCH_TIMEOUT"},
		{"cache size", "DATASET_CACHE_SIZE", "0", "DATASET_CACHE_SIZE"},
		{"unit policy", "UNIT_POLICY", "lenient", "UNIT_POLICY"},
		{"min year", "MIN_YEAR", "1980", "MIN_YEAR"},
		{"default year", "DEFAULT_YEAR", "1900", "DEFAULT_YEAR"},
		{"region", "DEFAULT_REGION", "CA", "DEFAULT_REGION"},
		{"template", "TRI_URL_TEMPLATE", "http://example.org/static.csv", "TRI_URL_TEMPLATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			freezeClock(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	freezeClock(t)
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_MinYearAboveMaxYear(t *testing.T) {
	freezeClock(t)
	t.Setenv("MIN_YEAR", "2020")
	t.Setenv("MAX_YEAR", "2019")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MIN_YEAR")
}
