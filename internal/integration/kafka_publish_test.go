//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/tri-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/tri-dashboard/internal/adapter/reference"
	"github.com/couchcryptid/tri-dashboard/internal/adapter/source"
	"github.com/couchcryptid/tri-dashboard/internal/config"
	"github.com/couchcryptid/tri-dashboard/internal/domain"
	"github.com/couchcryptid/tri-dashboard/internal/observability"
	"github.com/couchcryptid/tri-dashboard/internal/pipeline"
)

const testSummaryTopic = "test-county-summaries"

const triCSV = `1. YEAR,2. TRIFD,4. FACILITY NAME,7. COUNTY,8. ST,34. CHEMICAL,37. CAS#,47. UNIT OF MEASURE,48. 5.1 - FUGITIVE AIR,49. 5.2 - STACK AIR,20. PRIMARY NAICS
2022,F1,Refinery One,JEFFERSON,TX,BENZENE,71-43-2,Pounds,3000,1000,324110
2022,F1,Refinery One,JEFFERSON,TX,TOLUENE,108-88-3,Pounds,1000,1000,324110
2022,F2,Chem Plant,ORANGE,TX,BENZENE,71-43-2,Pounds,500,500,325110
2022,F2,Chem Plant,ORANGE,TX,TOLUENE,108-88-3,Pounds,4000,4000,325110
`

const countiesGeoJSON = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"CNTY_NM":"Jefferson"},"geometry":{"type":"Polygon","coordinates":[[[-94.5,29.8],[-93.8,29.8],[-93.8,30.2],[-94.5,29.8]]]}},
{"type":"Feature","properties":{"CNTY_NM":"Orange"},"geometry":{"type":"Polygon","coordinates":[[[-94.0,30.0],[-93.7,30.0],[-93.7,30.4],[-94.0,30.0]]]}}
]}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	kc, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("tri-dashboard-test"))
	testcontainers.CleanupContainer(t, kc)
	require.NoError(t, err, "start kafka container")

	brokers, err := kc.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cconn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cconn.Close()

	require.NoError(t, cconn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestLoadPublishesCountySummaries runs a full load from an HTTP TRI source
// through the reference join and verifies the county summaries land in Kafka.
func TestLoadPublishesCountySummaries(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSummaryTopic)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tri/2022_TX/csv", r.URL.Path)
		_, _ = io.WriteString(w, triCSV)
	}))
	t.Cleanup(upstream.Close)

	dir := t.TempDir()
	countiesPath := filepath.Join(dir, "counties.geojson")
	require.NoError(t, os.WriteFile(countiesPath, []byte(countiesGeoJSON), 0o600))

	cfg := &config.Config{
		KafkaBrokers:      []string{broker},
		KafkaSummaryTopic: testSummaryTopic,
	}
	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	metrics := observability.NewMetricsForTesting()
	client := source.NewClient(10*time.Second, discardLogger(), metrics)
	refs := reference.NewLoader(client, reference.Paths{Counties: countiesPath}, discardLogger())
	variants := pipeline.NewVariants(upstream.URL+"/tri/{year}_{region}/csv", "")
	p := pipeline.New(client, refs, variants, domain.UnitPolicyStrict, publisher, discardLogger(), metrics)

	ds, err := p.Load(ctx, pipeline.Request{Variant: pipeline.VariantTRI, Year: 2022, Region: "TX"})
	require.NoError(t, err)
	require.Len(t, ds.Records, 4)
	assert.NotEmpty(t, ds.Issues, "missing NAICS reference is reported, not fatal")

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testSummaryTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = reader.Close() })

	got := make(map[string]domain.CountySummary)
	keys := make(map[string]string)
	for len(got) < 2 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := reader.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from summary topic")

		var s domain.CountySummary
		require.NoError(t, json.Unmarshal(msg.Value, &s))
		got[s.County] = s
		keys[s.County] = string(msg.Key)
	}

	assert.Equal(t, "tri|2022|TX|ORANGE", keys["ORANGE"])
	assert.InDelta(t, 4.5, got["ORANGE"].Tons, 1e-9)
	assert.Equal(t, 1, got["ORANGE"].Rank)
	assert.InDelta(t, 3.0, got["JEFFERSON"].Tons, 1e-9)
	assert.Equal(t, 2, got["JEFFERSON"].Rank)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SummariesPublished), 0)
}
