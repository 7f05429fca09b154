package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

// DefaultTRIURLTemplate is the EPA TRI basic download endpoint. {year} and
// {region} are substituted per request.
const DefaultTRIURLTemplate = "https://data.epa.gov/efservice/downloads/tri/mv_tri_basic_download/{year}_{region}/csv"

// FirstReportingYear is the first year TRI data was collected.
const FirstReportingYear = 1987

// Regions are the TRI download regions the dashboard offers.
var Regions = []string{"TX", "US"}

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Sources. Paths may be local files or http(s) URLs.
	TRIURLTemplate  string
	NAICSPath       string
	CountiesPath    string
	ToxicityPath    string
	PointSourcePath string
	FacilitiesPath  string

	FetchTimeout     time.Duration
	DatasetCacheSize int
	UnitPolicy       domain.UnitPolicy

	MinYear        int
	MaxYear        int
	DefaultYear    int
	DefaultRegion  string
	DefaultVariant string

	// Optional Kafka export of county summaries.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaSummaryTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "60s"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	cacheSize, err := parsePositiveInt("DATASET_CACHE_SIZE", 8)
	if err != nil {
		return nil, err
	}

	maxYear, err := parsePositiveInt("MAX_YEAR", domain.LatestReportingYear())
	if err != nil {
		return nil, err
	}
	minYear, err := parsePositiveInt("MIN_YEAR", FirstReportingYear)
	if err != nil {
		return nil, err
	}
	defaultYear, err := parsePositiveInt("DEFAULT_YEAR", maxYear)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		TRIURLTemplate:  sharedcfg.EnvOrDefault("TRI_URL_TEMPLATE", DefaultTRIURLTemplate),
		NAICSPath:       sharedcfg.EnvOrDefault("NAICS_PATH", "data/2022_NAICS_Descriptions.xlsx"),
		CountiesPath:    sharedcfg.EnvOrDefault("COUNTIES_PATH", "data/Texas_County_Boundaries_Detailed.geojson"),
		ToxicityPath:    os.Getenv("TOXICITY_PATH"),
		PointSourcePath: sharedcfg.EnvOrDefault("POINT_SOURCE_PATH", "data/TCEQ_Stars.csv"),
		FacilitiesPath:  os.Getenv("FACILITIES_PATH"),

		FetchTimeout:     fetchTimeout,
		DatasetCacheSize: cacheSize,
		UnitPolicy:       domain.UnitPolicy(sharedcfg.EnvOrDefault("UNIT_POLICY", string(domain.UnitPolicyStrict))),

		MinYear:        minYear,
		MaxYear:        maxYear,
		DefaultYear:    defaultYear,
		DefaultRegion:  strings.ToUpper(sharedcfg.EnvOrDefault("DEFAULT_REGION", "TX")),
		DefaultVariant: sharedcfg.EnvOrDefault("DEFAULT_VARIANT", "tri"),

		KafkaEnabled:      os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSummaryTopic: sharedcfg.EnvOrDefault("KAFKA_SUMMARY_TOPIC", "tri-county-summaries"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !strings.Contains(c.TRIURLTemplate, "{year}") {
		return errors.New("TRI_URL_TEMPLATE must contain {year}")
	}
	if !c.UnitPolicy.Valid() {
		return fmt.Errorf("invalid UNIT_POLICY %q (want strict or legacy)", c.UnitPolicy)
	}
	if c.MinYear < FirstReportingYear {
		return fmt.Errorf("MIN_YEAR must be >= %d", FirstReportingYear)
	}
	if c.MinYear > c.MaxYear {
		return errors.New("MIN_YEAR must not exceed MAX_YEAR")
	}
	if c.DefaultYear < c.MinYear || c.DefaultYear > c.MaxYear {
		return errors.New("DEFAULT_YEAR must be between MIN_YEAR and MAX_YEAR")
	}
	if !ValidRegion(c.DefaultRegion) {
		return fmt.Errorf("invalid DEFAULT_REGION %q", c.DefaultRegion)
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if c.KafkaSummaryTopic == "" {
			return errors.New("KAFKA_SUMMARY_TOPIC is required")
		}
	}
	return nil
}

// ValidRegion reports whether r is a supported download region.
func ValidRegion(r string) bool {
	for _, v := range Regions {
		if v == r {
			return true
		}
	}
	return false
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
