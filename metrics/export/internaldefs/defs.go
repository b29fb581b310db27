package internaldefs

import (
	"strconv"
	"strings"

	goGate "github.com/MrEthical07/goGate"
)

// BucketCount is the number of latency buckets, the last one unbounded.
const BucketCount = len(goGate.HistogramBounds) + 1

type CounterDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goGate.MetricLoginSuccess, Name: "gogate_login_success_total", Help: "Successful sign-ins."},
	{ID: goGate.MetricLoginRejected, Name: "gogate_login_rejected_total", Help: "Rejected sign-in attempts."},
	{ID: goGate.MetricLogout, Name: "gogate_logout_total", Help: "Sign-outs."},
	{ID: goGate.MetricBootstrapRestored, Name: "gogate_bootstrap_restored_total", Help: "Bootstraps that restored a stored session."},
	{ID: goGate.MetricBootstrapEmpty, Name: "gogate_bootstrap_empty_total", Help: "Bootstraps that found no stored session."},
	{ID: goGate.MetricBootstrapRejected, Name: "gogate_bootstrap_rejected_total", Help: "Bootstraps whose stored session was refused."},
	{ID: goGate.MetricPersistCorrupt, Name: "gogate_persist_corrupt_total", Help: "Stored sessions that could not be decoded."},
	{ID: goGate.MetricGuardAllow, Name: "gogate_guard_allow_total", Help: "Route decisions that allowed entry."},
	{ID: goGate.MetricGuardDenyUnauthenticated, Name: "gogate_guard_deny_unauthenticated_total", Help: "Route decisions redirecting to login."},
	{ID: goGate.MetricGuardDenyForbidden, Name: "gogate_guard_deny_forbidden_total", Help: "Route decisions redirecting to home."},
	{ID: goGate.MetricGuardPending, Name: "gogate_guard_pending_total", Help: "Route decisions made before bootstrap finished."},
	{ID: goGate.MetricRoleSwitch, Name: "gogate_role_switch_total", Help: "Development role switches."},
}

var HistogramDefs = []HistogramDef{
	{ID: goGate.MetricDecideLatency, Name: "gogate_decide_latency_seconds", Help: "Route decision latency."},
}

// AuditDroppedName is the counter of audit events lost to backpressure.
const AuditDroppedName = "gogate_audit_dropped_total"

// BoundSeconds returns the finite bucket upper bounds in seconds.
func BoundSeconds() []float64 {
	out := make([]float64, len(goGate.HistogramBounds))
	for i, d := range goGate.HistogramBounds {
		out[i] = d.Seconds()
	}
	return out
}

// BoundSuffixes returns instrument-name-safe labels for every bucket, for
// example "0_000005" and "inf".
func BoundSuffixes() []string {
	out := make([]string, 0, BucketCount)
	for _, s := range BoundSeconds() {
		out = append(out, strings.ReplaceAll(strconv.FormatFloat(s, 'f', -1, 64), ".", "_"))
	}
	return append(out, "inf")
}

func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
