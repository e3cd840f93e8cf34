package core

import "time"

// MetricsRecorder collects engine level counters and latencies
type MetricsRecorder interface {
	// ObserveTransaction counts a create or confirm call by its outcome
	ObserveTransaction(flow string, outcome string)
	ObserveLedgerOperation(operation string, result string)
	ObserveGatewayCall(result string, duration time.Duration)
	ObserveSettlementPublish(result string)
}
