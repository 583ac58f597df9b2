package config

import (
	"os"
	"strconv"
)

// Config carries all runtime settings. It is constructed once at process
// start and passed by reference to every component; nothing reads the
// environment after Load returns.
type Config struct {
	// Paths
	DBPath         string
	DataDir        string
	CommitteesPath string

	// Discovery APIs
	GovInfoAPIKey  string
	CongressAPIKey string
	Congress       int // congress number, e.g. 119
	LookbackDays   int

	// Matching thresholds
	CrossSourceMinOverlap int     // significant keywords shared before a cross-source merge
	CrossRunMinSimilarity float64 // Jaccard floor for cross-run identity matching
	FailureThreshold      int     // consecutive failures before a scraper alerts

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// SFTP archive upload (export --upload)
	SFTPHost      string
	SFTPPort      int
	SFTPUser      string
	SFTPPass      string
	SFTPRemoteDir string
}

func Load() Config {
	return Config{
		DBPath:         getenv("HEARING_DB_PATH", "data/state.db"),
		DataDir:        getenv("HEARING_DATA_DIR", "data"),
		CommitteesPath: getenv("HEARING_COMMITTEES_PATH", "committees.yaml"),

		GovInfoAPIKey:  getenv("GOVINFO_API_KEY", "DEMO_KEY"),
		CongressAPIKey: os.Getenv("CONGRESS_API_KEY"),
		Congress:       getenvInt("CONGRESS_NUMBER", 119),
		LookbackDays:   getenvInt("HEARING_LOOKBACK_DAYS", 1),

		CrossSourceMinOverlap: getenvInt("HEARING_CROSS_SOURCE_MIN_OVERLAP", 2),
		CrossRunMinSimilarity: getenvFloat("HEARING_CROSS_RUN_MIN_SIMILARITY", 0.30),
		FailureThreshold:      getenvInt("HEARING_FAILURE_THRESHOLD", 3),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),

		SFTPHost:      os.Getenv("SFTP_HOST"),
		SFTPPort:      getenvInt("SFTP_PORT", 22),
		SFTPUser:      os.Getenv("SFTP_USER"),
		SFTPPass:      os.Getenv("SFTP_PASS"),
		SFTPRemoteDir: getenv("SFTP_REMOTE_DIR", "/archive/hearings"),
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
