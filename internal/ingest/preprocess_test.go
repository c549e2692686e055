package ingest

import "testing"

func TestExtractMessage_PrefersMessageField(t *testing.T) {
	line := `{"message":"connection refused","level":"error","msg":"should not use this"}`
	got := ExtractMessage(line)
	want := "connection refused"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractMessage_FallsBackThroughPriorityOrder(t *testing.T) {
	cases := []struct {
		name string
		line string
		want string
	}{
		{"msg", `{"msg":"from msg field"}`, "from msg field"},
		{"log", `{"log":"from log field"}`, "from log field"},
		{"text", `{"text":"from text field"}`, "from text field"},
		{"_raw", `{"_raw":"from raw field"}`, "from raw field"},
		{"event", `{"event":"from event field"}`, "from event field"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractMessage(tc.line)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractMessage_NonJSONPassesThroughUnchanged(t *testing.T) {
	line := "2026-07-30T10:00:00Z ERROR connection refused to host 10.0.0.5"
	if got := ExtractMessage(line); got != line {
		t.Fatalf("got %q, want unchanged %q", got, line)
	}
}

func TestExtractMessage_JSONWithoutRecognisedFieldPassesThroughUnchanged(t *testing.T) {
	line := `{"level":"error","code":500}`
	if got := ExtractMessage(line); got != line {
		t.Fatalf("got %q, want unchanged %q", got, line)
	}
}

func TestExtractMessage_EmptyMessageFieldFallsThrough(t *testing.T) {
	line := `{"message":"","msg":"fallback text"}`
	want := "fallback text"
	if got := ExtractMessage(line); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalize_ExtractsAndTrims(t *testing.T) {
	line := `  {"message":"  connection refused  "}  `
	want := "connection refused"
	if got := Normalize(line); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalize_PreservesCase(t *testing.T) {
	line := "ERROR Connection Refused"
	if got := Normalize(line); got != line {
		t.Fatalf("got %q, want case-preserved %q", got, line)
	}
}
