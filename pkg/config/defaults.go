package config

// Tree defaults.
const (
	DefaultKeyType = KeyTypeInt
	DefaultOrder   = OrderAsc
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Render defaults.
const (
	DefaultRenderColor   = true
	DefaultRenderStyle   = "light"
	DefaultRenderMaxRows = 0
	DefaultRenderFormat  = FormatText
)

// Bench defaults.
const (
	DefaultBenchOps         = 100_000
	DefaultBenchKeySpace    = 10_000
	DefaultBenchSeed        = 1
	DefaultBenchRemoveRatio = 0.3
)

// Telemetry defaults.
const (
	DefaultTelemetryEnvironment = "development"
)
