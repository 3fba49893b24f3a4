package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for HTTP requests and status
// transitions. This is intentionally minimal and in-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)

	transitionsTotal = make(map[transitionKey]int64)

	retentionApplicationsPurged int64
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

type transitionKey struct {
	Transition string
	Outcome    string // applied, illegal, guard_rejected, conflict
}

// RecordRequest increments request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	rk := reqKey{Method: method, Path: path, Status: status}
	requestsTotal[rk]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordTransition counts a transition attempt and its outcome.
func RecordTransition(transition, outcome string) {
	mu.Lock()
	defer mu.Unlock()
	transitionsTotal[transitionKey{Transition: transition, Outcome: outcome}]++
}

// RecordRetentionApplications increments the counter of applications
// purged by TTL cleanup.
func RecordRetentionApplications(purged int64) {
	if purged <= 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	retentionApplicationsPurged += purged
}

// Export returns Prometheus-style metrics text.
func Export() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP jobtrack_http_requests_total Total HTTP requests\n")
	b.WriteString("# TYPE jobtrack_http_requests_total counter\n")

	// Sort keys for stable output
	var reqKeys []reqKey
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].Method != reqKeys[j].Method {
			return reqKeys[i].Method < reqKeys[j].Method
		}
		if reqKeys[i].Path != reqKeys[j].Path {
			return reqKeys[i].Path < reqKeys[j].Path
		}
		return reqKeys[i].Status < reqKeys[j].Status
	})

	for _, k := range reqKeys {
		v := requestsTotal[k]
		fmt.Fprintf(&b, "jobtrack_http_requests_total{method=\"%s\",path=\"%s\",status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, v)
	}

	b.WriteString("# HELP jobtrack_http_request_duration_ms_sum Total request duration in milliseconds\n")
	b.WriteString("# TYPE jobtrack_http_request_duration_ms_sum counter\n")
	b.WriteString("# HELP jobtrack_http_request_duration_ms_count Request count for latency metric\n")
	b.WriteString("# TYPE jobtrack_http_request_duration_ms_count counter\n")

	var latKeys []latKey
	for k := range latencyMsSum {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].Method != latKeys[j].Method {
			return latKeys[i].Method < latKeys[j].Method
		}
		return latKeys[i].Path < latKeys[j].Path
	})

	for _, k := range latKeys {
		sum := latencyMsSum[k]
		cnt := latencyMsCount[k]
		fmt.Fprintf(&b, "jobtrack_http_request_duration_ms_sum{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, sum)
		fmt.Fprintf(&b, "jobtrack_http_request_duration_ms_count{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, cnt)
	}

	// Transition metrics
	b.WriteString("# HELP jobtrack_transitions_total Total status transition attempts by outcome\n")
	b.WriteString("# TYPE jobtrack_transitions_total counter\n")

	var trKeys []transitionKey
	for k := range transitionsTotal {
		trKeys = append(trKeys, k)
	}
	sort.Slice(trKeys, func(i, j int) bool {
		if trKeys[i].Transition != trKeys[j].Transition {
			return trKeys[i].Transition < trKeys[j].Transition
		}
		return trKeys[i].Outcome < trKeys[j].Outcome
	})

	for _, k := range trKeys {
		v := transitionsTotal[k]
		fmt.Fprintf(&b, "jobtrack_transitions_total{transition=\"%s\",outcome=\"%s\"} %d\n",
			k.Transition, k.Outcome, v)
	}

	// Retention metrics
	b.WriteString("# HELP jobtrack_retention_applications_purged_total Total soft-deleted applications purged by TTL\n")
	b.WriteString("# TYPE jobtrack_retention_applications_purged_total counter\n")
	fmt.Fprintf(&b, "jobtrack_retention_applications_purged_total %d\n", retentionApplicationsPurged)

	return b.String()
}
