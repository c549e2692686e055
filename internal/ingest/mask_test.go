package ingest

import "testing"

func TestMaskDynamicValues_IPv4(t *testing.T) {
	got := MaskDynamicValues("connect to 10.0.0.5 failed")
	want := "connect to <IP> failed"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMaskDynamicValues_UUID(t *testing.T) {
	got := MaskDynamicValues("request 123e4567-e89b-12d3-a456-426614174000 timed out")
	want := "request <UUID> timed out"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMaskDynamicValues_ISO8601Timestamp(t *testing.T) {
	got := MaskDynamicValues("event at 2026-07-30T10:00:00Z recorded")
	want := "event at <TIMESTAMP> recorded"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMaskDynamicValues_UnixTimestamp(t *testing.T) {
	got := MaskDynamicValues("event at 1769766000 recorded")
	want := "event at <TIMESTAMP> recorded"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMaskDynamicValues_HexBlob(t *testing.T) {
	got := MaskDynamicValues("checksum 0xdeadbeef mismatch")
	want := "checksum <HEX> mismatch"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMaskDynamicValues_URL(t *testing.T) {
	got := MaskDynamicValues("fetching https://example.com/api/v1/resource?id=42 failed")
	want := "fetching <URL> failed"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMaskDynamicValues_Email(t *testing.T) {
	got := MaskDynamicValues("notify admin@example.com of failure")
	want := "notify <EMAIL> of failure"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMaskDynamicValues_TrimsSurroundingWhitespace(t *testing.T) {
	got := MaskDynamicValues("  connect to 10.0.0.5 failed  ")
	want := "connect to <IP> failed"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMaskKubernetesNames_PodName(t *testing.T) {
	got := MaskKubernetesNames("pod nginx-deployment-66b6c48dd5-8w7xz restarted")
	want := "pod <K8S_NAME> restarted"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMaskDynamicValues_CollapsesEquivalentPatternsToSameCanonicalForm(t *testing.T) {
	a := MaskDynamicValues("connect to 10.0.0.5 failed")
	b := MaskDynamicValues("connect to 192.168.1.1 failed")
	if a != b {
		t.Fatalf("expected equivalent canonical forms, got %q and %q", a, b)
	}
}
