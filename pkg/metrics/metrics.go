package metrics

/*
Labels and so on for metrics used in the DCO checker.
*/

const (
	LabelMethod  = "method"
	LabelRoute   = "route"
	LabelSuccess = "success"

	// Labels for check metrics
	LabelState = "state"
	LabelEvent = "event"
	LabelCache = "cache"
)
