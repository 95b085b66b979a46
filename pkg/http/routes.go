package http

const (
	Webhook = "Webhook"
	Health  = "Health"
	Metrics = "Metrics"

	NotFound = "NotFound"
)
