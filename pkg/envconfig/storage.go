package envconfig

import (
	"merchantops/pkg/database"
)

// LoadStorageConfig loads flat-file storage configuration from
// environment variables, falling back to package defaults.
func LoadStorageConfig() database.Config {
	config := database.DefaultConfig()

	if dataDir := GetEnv("DATA_DIR", ""); dataDir != "" {
		config.DataDir = dataDir
	}

	if reportsDir := GetEnv("REPORTS_DIR", ""); reportsDir != "" {
		config.ReportsDir = reportsDir
	}

	return config
}
