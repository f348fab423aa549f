package obs

// ExporterType enumerates supported tracing exporter backends.
type ExporterType string

const (
	ExporterOTLP   ExporterType = "otlp"
	ExporterStdout ExporterType = "stdout"
	ExporterNone   ExporterType = "none"
)

// Options control observability initialization.
type Options struct {
	ServiceName string
	Environment string
	Version     string

	Exporter    ExporterType
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	SampleRatio float64

	DisableMetrics bool
}

// DefaultOptions returns sane defaults when configuration is partial.
func DefaultOptions() Options {
	return Options{
		Exporter:    ExporterNone,
		SampleRatio: 1.0,
	}
}
