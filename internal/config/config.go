package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/AD7six/ebs-dash/internal/sharding"
)

// dashboardNameRegex matches the characters CloudWatch accepts in a dashboard name.
var dashboardNameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Settings contains configuration for the AWS clients and dashboard generation.
// A Settings value is built once per run and never mutated afterwards; use
// WithOverrides to derive a copy carrying CLI flag values.
type Settings struct {
	Region                 string        // AWS region for EC2 and CloudWatch, defaults to us-west-2
	DashboardPrefix        string        // Prefix of every shard dashboard name, defaults to "EBS_"
	NavDashboardName       string        // Name of the navigation dashboard, defaults to "0_EBS_NAV"
	MaxMetricsPerDashboard int           // Metric ceiling per dashboard, defaults to 2500
	MaxMetricsPerWidget    int           // Metric ceiling per widget, defaults to 500
	MaxDashboardNameLength int           // Maximum dashboard name length, defaults to 255
	PageSize               int           // Results per DescribeVolumes page, defaults to 300
	WidgetWidth            int           // Grid width of a volume widget, defaults to 12
	WidgetHeight           int           // Grid height of a volume widget, defaults to 6
	MetricPeriod           int           // Metric period in seconds, defaults to 60
	DataDir                string        // Base data directory for file output (default: data/)
	Concurrency            int           // Parallel dashboard upserts, defaults to 4
	PutRatePerSecond       float64       // Dashboard API calls per second, defaults to 5
	MaxAttempts            int           // AWS SDK retry attempts, defaults to 5
	HTTPTimeout            time.Duration // HTTP client timeout, defaults to 60 seconds
}

// Overrides holds optional values coming from CLI flags. Zero values leave the
// corresponding setting untouched.
type Overrides struct {
	Region          string
	DashboardPrefix string
	NavDashboard    string
	Concurrency     int
}

// LoadSettings loads configuration from environment variables and optional .env file.
// No variable is required; AWS credentials come from the SDK default chain.
func LoadSettings() (*Settings, error) {
	// If .env exists, try to load it
	if _, err := os.Stat(".env"); err == nil {
		err := godotenv.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	region := strings.TrimSpace(strings.ToLower(getEnv("AWS_REGION", "us-west-2")))

	putRate, err := getEnvFloat("PUT_RATE_PER_SECOND", 5)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Region:                 region,
		DashboardPrefix:        getEnv("DASHBOARD_PREFIX", "EBS_"),
		NavDashboardName:       getEnv("NAV_DASHBOARD_NAME", "0_EBS_NAV"),
		MaxMetricsPerDashboard: getEnvInt("MAX_METRICS_PER_DASHBOARD", 2500),
		MaxMetricsPerWidget:    getEnvInt("MAX_METRICS_PER_WIDGET", 500),
		MaxDashboardNameLength: getEnvInt("MAX_DASHBOARD_NAME_LENGTH", 255),
		PageSize:               getEnvInt("PAGE_SIZE", 300),
		WidgetWidth:            getEnvInt("WIDGET_WIDTH", 12),
		WidgetHeight:           getEnvInt("WIDGET_HEIGHT", 6),
		MetricPeriod:           getEnvInt("METRIC_PERIOD", 60),
		DataDir:                getEnv("DATA_DIR", "data"),
		Concurrency:            getEnvInt("CONCURRENCY", 4),
		PutRatePerSecond:       putRate,
		MaxAttempts:            getEnvInt("AWS_MAX_ATTEMPTS", 5),
		HTTPTimeout:            time.Duration(getEnvInt("HTTP_TIMEOUT", 60)) * time.Second,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// WithOverrides returns a copy of s with every non-zero override applied.
// The receiver is left unchanged.
func (s Settings) WithOverrides(o Overrides) (*Settings, error) {
	if o.Region != "" {
		s.Region = strings.TrimSpace(strings.ToLower(o.Region))
	}
	if o.DashboardPrefix != "" {
		s.DashboardPrefix = o.DashboardPrefix
	}
	if o.NavDashboard != "" {
		s.NavDashboardName = o.NavDashboard
	}
	if o.Concurrency > 0 {
		s.Concurrency = o.Concurrency
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings for values the engine cannot work with.
func (s *Settings) Validate() error {
	if s.Region == "" {
		return fmt.Errorf("AWS_REGION must not be empty")
	}
	if s.DashboardPrefix == "" {
		return fmt.Errorf("DASHBOARD_PREFIX must not be empty")
	}
	if !dashboardNameRegex.MatchString(s.DashboardPrefix) {
		return fmt.Errorf("DASHBOARD_PREFIX %q may only contain letters, digits, '-' and '_'", s.DashboardPrefix)
	}
	if s.NavDashboardName == "" {
		return fmt.Errorf("NAV_DASHBOARD_NAME must not be empty")
	}
	if !dashboardNameRegex.MatchString(s.NavDashboardName) {
		return fmt.Errorf("NAV_DASHBOARD_NAME %q may only contain letters, digits, '-' and '_'", s.NavDashboardName)
	}
	namePrefix := sharding.NamePrefix(s.DashboardPrefix)
	if strings.HasPrefix(s.NavDashboardName, namePrefix) {
		// Cleanup deletes everything under the prefix, the index included.
		return fmt.Errorf("NAV_DASHBOARD_NAME %q must not start with %q", s.NavDashboardName, namePrefix)
	}
	positive := map[string]int{
		"MAX_METRICS_PER_DASHBOARD": s.MaxMetricsPerDashboard,
		"MAX_METRICS_PER_WIDGET":    s.MaxMetricsPerWidget,
		"MAX_DASHBOARD_NAME_LENGTH": s.MaxDashboardNameLength,
		"WIDGET_WIDTH":              s.WidgetWidth,
		"WIDGET_HEIGHT":             s.WidgetHeight,
		"METRIC_PERIOD":             s.MetricPeriod,
		"CONCURRENCY":               s.Concurrency,
		"AWS_MAX_ATTEMPTS":          s.MaxAttempts,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if s.PageSize < 5 || s.PageSize > 1000 {
		return fmt.Errorf("PAGE_SIZE must be between 5 and 1000, got %d", s.PageSize)
	}
	if s.PutRatePerSecond <= 0 {
		return fmt.Errorf("PUT_RATE_PER_SECOND must be positive, got %v", s.PutRatePerSecond)
	}
	if s.MaxDashboardNameLength < len(namePrefix)+sharding.MinNameRoom {
		return fmt.Errorf("MAX_DASHBOARD_NAME_LENGTH %d is too short for prefix %q", s.MaxDashboardNameLength, s.DashboardPrefix)
	}
	if len(s.NavDashboardName) > s.MaxDashboardNameLength {
		return fmt.Errorf("NAV_DASHBOARD_NAME exceeds %d characters", s.MaxDashboardNameLength)
	}
	return nil
}

// get the env variable with a default
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// getEnvInt returns an integer env var, defaulting when unset/empty or invalid.
func getEnvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return i
	}
	return def
}

// getEnvFloat returns a float env var, defaulting when unset/empty. Unlike
// getEnvInt an unparsable value is an error.
func getEnvFloat(key string, def float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return f, nil
}
