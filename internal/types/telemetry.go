package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricAPILatency         = "APILatency"
	MetricAPIRequestCount    = "APIRequestCount"
	MetricForecastLookup     = "ForecastLookup"
	MetricForecastCacheHit   = "ForecastCacheHit"
	MetricExternalAPIFailure = "ExternalAPIFailure"
	MetricRoutesAnalyzed     = "RoutesAnalyzed"

	// Dimension Keys
	DimEndpoint = "Endpoint"
	DimMethod   = "Method"
	DimStatus   = "Status"
	DimProvider = "Provider"
	DimResult   = "Result"

	// Metric Namespace
	MetricNamespace = "RainCheck"
)
