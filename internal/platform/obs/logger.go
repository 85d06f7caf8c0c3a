package obs

import "go.uber.org/zap"

// NewLogger builds the service logger. Development mode logs human-readable
// console output at debug level; everything else logs JSON to stdout.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}

	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	return config.Build()
}

// BootstrapLogger reports failures that happen before the configured logger exists.
// It writes JSON to stderr.
func BootstrapLogger() *zap.Logger {
	return zap.Must(zap.NewProduction())
}
