package tracing

type TraceConfig struct {
	ExporterURL string
	SampleRate  float64
}

type AppInfo struct {
	Environment    string
	ServiceName    string
	ServiceVersion string
}
