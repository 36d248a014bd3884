package metrics

import "time"

// Call outcomes recorded by ObserveCall.
const (
	OutcomeOK        = "ok"
	OutcomeBadInput  = "bad_input"
	OutcomeError     = "error"
	OutcomeEncodeErr = "encode_error"
)

// ObserveCall records one bridged call.
func ObserveCall(module, export, method, outcome string, d time.Duration) {
	bridgeCalls.WithLabelValues(module, export, method, outcome).Inc()
	bridgeCallDuration.WithLabelValues(module, export).Observe(d.Seconds())
}
