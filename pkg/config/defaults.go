// Package config provides centralized default values for CoursePulse
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseFloat(valStr, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%g (default: %g)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	SlowQueryThreshold       time.Duration

	// Refresh tier intervals and cache TTLs. A row's expires_at is stamped
	// interval-plus-grace ahead so a healthy tier never serves stale rows.
	LightTierInterval  time.Duration
	MediumTierInterval time.Duration
	HeavyTierInterval  time.Duration
	LightTierTTL       time.Duration
	MediumTierTTL      time.Duration
	HeavyTierTTL       time.Duration

	// Refresh batch behavior
	RefreshTenantConcurrency int

	// Commitment scoring
	OnboardingWindowDays     int
	FirstActivityFastHours   int
	FirstActivityMediumHours int
	FirstActivitySlowHours   int
	RiskFactorMinEvents      int
	RiskFactorMaxGapHours    int
	AtRiskListLimit          int

	// Score bands shared by commitment and consistency aggregates
	ScoreBandHigh   int
	ScoreBandMedium int

	// Consistency scoring
	ConsistencyWeeks        int
	ConsistencyHourStdCap   float64
	ConsistencyDayWeight    float64
	ConsistencyHourWeight   float64
	WeeksActiveShare        float64
	PatternConsistencyShare float64
	DecayShare              float64

	// Aha-moment detection
	SpikeWindowDays     int
	ExperienceMinEvents int
	TopExperiencesLimit int
	StagnationDays      int
	StagnantListLimit   int

	// Pathway analysis
	TopPathwaysLimit    int
	PathwayMinStudents  int
	DeadEndDropOffShare float64
	PowerComboMinLift   float64
	PowerCombosLimit    int

	// Supplementary metrics
	PopularContentWindow time.Duration
	PopularContentLimit  int
	FeedbackThemesLimit  int

	// Performance tracker retention
	PerfMarkerCapacity int

	// Paths
	TierConfigPath     string
	TenantRegistryPath string
	TenantConfigDir    string
	TenantDataDir      string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)

	// Refresh tiers
	LightTierInterval = getEnvDuration("LIGHT_TIER_INTERVAL", 15*time.Minute)
	MediumTierInterval = getEnvDuration("MEDIUM_TIER_INTERVAL", time.Hour)
	HeavyTierInterval = getEnvDuration("HEAVY_TIER_INTERVAL", 6*time.Hour)
	LightTierTTL = getEnvDuration("LIGHT_TIER_TTL", 20*time.Minute)
	MediumTierTTL = getEnvDuration("MEDIUM_TIER_TTL", 75*time.Minute)
	HeavyTierTTL = getEnvDuration("HEAVY_TIER_TTL", 7*time.Hour)
	RefreshTenantConcurrency = getEnvInt("REFRESH_TENANT_CONCURRENCY", 4)

	// Commitment scoring
	OnboardingWindowDays = getEnvInt("ONBOARDING_WINDOW_DAYS", 7)
	FirstActivityFastHours = getEnvInt("FIRST_ACTIVITY_FAST_HOURS", 6)
	FirstActivityMediumHours = getEnvInt("FIRST_ACTIVITY_MEDIUM_HOURS", 24)
	FirstActivitySlowHours = getEnvInt("FIRST_ACTIVITY_SLOW_HOURS", 48)
	RiskFactorMinEvents = getEnvInt("RISK_FACTOR_MIN_EVENTS", 3)
	RiskFactorMaxGapHours = getEnvInt("RISK_FACTOR_MAX_GAP_HOURS", 48)
	AtRiskListLimit = getEnvInt("AT_RISK_LIST_LIMIT", 20)

	// Score bands
	ScoreBandHigh = getEnvInt("SCORE_BAND_HIGH", 70)
	ScoreBandMedium = getEnvInt("SCORE_BAND_MEDIUM", 40)

	// Consistency scoring
	ConsistencyWeeks = getEnvInt("CONSISTENCY_WEEKS", 8)
	ConsistencyHourStdCap = getEnvFloat("CONSISTENCY_HOUR_STD_CAP", 12.0)
	ConsistencyDayWeight = getEnvFloat("CONSISTENCY_DAY_WEIGHT", 0.6)
	ConsistencyHourWeight = getEnvFloat("CONSISTENCY_HOUR_WEIGHT", 0.4)
	WeeksActiveShare = getEnvFloat("WEEKS_ACTIVE_SHARE", 0.4)
	PatternConsistencyShare = getEnvFloat("PATTERN_CONSISTENCY_SHARE", 0.3)
	DecayShare = getEnvFloat("DECAY_SHARE", 0.3)

	// Aha-moment detection
	SpikeWindowDays = getEnvInt("SPIKE_WINDOW_DAYS", 7)
	ExperienceMinEvents = getEnvInt("EXPERIENCE_MIN_EVENTS", 5)
	TopExperiencesLimit = getEnvInt("TOP_EXPERIENCES_LIMIT", 5)
	StagnationDays = getEnvInt("STAGNATION_DAYS", 14)
	StagnantListLimit = getEnvInt("STAGNANT_LIST_LIMIT", 20)

	// Pathway analysis
	TopPathwaysLimit = getEnvInt("TOP_PATHWAYS_LIMIT", 3)
	PathwayMinStudents = getEnvInt("PATHWAY_MIN_STUDENTS", 3)
	DeadEndDropOffShare = getEnvFloat("DEAD_END_DROP_OFF_SHARE", 0.6)
	PowerComboMinLift = getEnvFloat("POWER_COMBO_MIN_LIFT", 1.25)
	PowerCombosLimit = getEnvInt("POWER_COMBOS_LIMIT", 5)

	// Supplementary metrics
	PopularContentWindow = getEnvDuration("POPULAR_CONTENT_WINDOW", 24*time.Hour)
	PopularContentLimit = getEnvInt("POPULAR_CONTENT_LIMIT", 10)
	FeedbackThemesLimit = getEnvInt("FEEDBACK_THEMES_LIMIT", 8)

	// Performance tracker retention
	PerfMarkerCapacity = getEnvInt("PERF_MARKER_CAPACITY", 2048)

	// Paths
	TierConfigPath = getEnvString("TIER_CONFIG_PATH", "config/tiers.yaml")
	TenantRegistryPath = getEnvString("TENANT_REGISTRY_PATH", "config/tenants.yaml")
	TenantConfigDir = getEnvString("TENANT_CONFIG_DIR", "config/tenants")
	TenantDataDir = getEnvString("TENANT_DATA_DIR", "data")
}
