package metrics

import (
	"strings"
	"testing"
)

func TestRecordRequestAndExport(t *testing.T) {
	// Record a single request and ensure it appears in the export.
	RecordRequest("GET", "/v1/applications", 200, 42)

	out := Export()
	if !strings.Contains(out, "jobtrack_http_requests_total{method=\"GET\",path=\"/v1/applications\",status=\"200\"}") {
		t.Fatalf("expected HTTP request metric for GET /v1/applications in export, got:\n%s", out)
	}
	if !strings.Contains(out, "jobtrack_http_request_duration_ms_sum") || !strings.Contains(out, "jobtrack_http_request_duration_ms_count") {
		t.Fatalf("expected latency metrics headers in export, got:\n%s", out)
	}
}

func TestRecordTransitionMetrics(t *testing.T) {
	RecordTransition("send_followup", "applied")
	RecordTransition("accept_offer", "illegal")
	RecordTransition("schedule_interview", "guard_rejected")
	RecordTransition("receive_offer", "conflict")

	out := Export()
	if !strings.Contains(out, "jobtrack_transitions_total{transition=\"send_followup\",outcome=\"applied\"}") {
		t.Fatalf("expected applied transition metric, got:\n%s", out)
	}
	if !strings.Contains(out, "jobtrack_transitions_total{transition=\"accept_offer\",outcome=\"illegal\"}") {
		t.Fatalf("expected illegal transition metric, got:\n%s", out)
	}
	if !strings.Contains(out, "jobtrack_transitions_total{transition=\"schedule_interview\",outcome=\"guard_rejected\"}") {
		t.Fatalf("expected guard_rejected transition metric, got:\n%s", out)
	}
	if !strings.Contains(out, "jobtrack_transitions_total{transition=\"receive_offer\",outcome=\"conflict\"}") {
		t.Fatalf("expected conflict transition metric, got:\n%s", out)
	}
}

func TestRecordRetentionMetrics(t *testing.T) {
	RecordRetentionApplications(3)
	RecordRetentionApplications(0) // no-op

	out := Export()
	if !strings.Contains(out, "jobtrack_retention_applications_purged_total") {
		t.Fatalf("expected retention metric in export, got:\n%s", out)
	}
}
