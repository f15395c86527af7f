package receipt

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/govgate/govgate/internal/pii"
)

var idFormat = regexp.MustCompile(`^rcpt_[0-9a-f]{32}$`)

func mustGenerate(t *testing.T, input, output, action string) *Receipt {
	t.Helper()
	r, err := Generate(input, output, action, []pii.Type{pii.TypeSSN}, 1, "1.0", 1234)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return r
}

func TestHashText(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		if HashText("some text") != HashText("some text") {
			t.Error("same text produced different hashes")
		}
	})

	t.Run("distinct inputs", func(t *testing.T) {
		if HashText("test1") == HashText("test2") {
			t.Error("different text produced the same hash")
		}
	})

	t.Run("format", func(t *testing.T) {
		for _, text := range []string{"", "a", "unicode 世界"} {
			hash := HashText(text)
			if len(hash) != len("sha256:")+64 {
				t.Errorf("HashText(%q) length = %d", text, len(hash))
			}
			if !regexp.MustCompile(`^sha256:[0-9a-f]{64}$`).MatchString(hash) {
				t.Errorf("HashText(%q) = %q, bad format", text, hash)
			}
		}
	})

	t.Run("single byte sensitivity", func(t *testing.T) {
		if HashText("hello world") == HashText("hello worlc") {
			t.Error("one-byte change did not change the hash")
		}
	})
}

func TestGenerateIDFormat(t *testing.T) {
	r := mustGenerate(t, "in", "out", "redact")
	if !idFormat.MatchString(r.ID) {
		t.Errorf("id = %q, want rcpt_ plus 32 lowercase hex", r.ID)
	}
}

func TestGenerateIDsPracticallyUnique(t *testing.T) {
	const n = 1000
	seen := make(map[string]bool, n)

	for i := 0; i < n; i++ {
		r := mustGenerate(t, "identical input", "identical output", "redact")
		if seen[r.ID] {
			t.Fatalf("duplicate receipt id after %d generations: %s", i, r.ID)
		}
		seen[r.ID] = true
	}
}

func TestGenerateTimestamp(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	r := mustGenerate(t, "in", "out", "allow")
	after := time.Now().UTC().Add(time.Second)

	parsed, err := time.Parse(timestampLayout, r.Timestamp)
	if err != nil {
		t.Fatalf("timestamp %q does not parse: %v", r.Timestamp, err)
	}
	if parsed.Before(before) || parsed.After(after) {
		t.Errorf("timestamp %v outside [%v, %v]", parsed, before, after)
	}
}

func TestVerify(t *testing.T) {
	r := mustGenerate(t, "the input text", "the output text", "redact")

	t.Run("generating pair", func(t *testing.T) {
		if !r.Verify("the input text", "the output text") {
			t.Error("Verify rejected the generating pair")
		}
	})

	t.Run("changed input", func(t *testing.T) {
		if r.Verify("the input texT", "the output text") {
			t.Error("Verify accepted a changed input")
		}
	})

	t.Run("changed output", func(t *testing.T) {
		if r.Verify("the input text", "the output texT") {
			t.Error("Verify accepted a changed output")
		}
	})

	t.Run("swapped pair", func(t *testing.T) {
		if r.Verify("the output text", "the input text") {
			t.Error("Verify accepted the swapped pair")
		}
	})
}

func TestReceiptDoesNotRetainText(t *testing.T) {
	r := mustGenerate(t, "secret input 123-45-6789", "secret output", "deny")

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	body := string(data)
	for _, secret := range []string{"secret input", "secret output", "123-45-6789"} {
		if regexp.MustCompile(regexp.QuoteMeta(secret)).MatchString(body) {
			t.Errorf("serialized receipt contains raw text %q", secret)
		}
	}
}

func TestReceiptStableFieldSet(t *testing.T) {
	r := mustGenerate(t, "in", "out", "escalate")

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	want := []string{
		"id", "timestamp", "input_hash", "output_hash",
		"action", "pii_types", "pii_count", "policy_version", "processing_time_ns",
	}
	for _, field := range want {
		if _, ok := fields[field]; !ok {
			t.Errorf("serialized receipt missing field %q", field)
		}
	}
	if len(fields) != len(want) {
		t.Errorf("serialized receipt has %d fields, want %d", len(fields), len(want))
	}
}

func TestGeneratePIITypesCopied(t *testing.T) {
	types := []pii.Type{pii.TypeSSN, pii.TypeEmail}
	r, err := Generate("in", "out", "redact", types, 2, "1.0", 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	types[0] = pii.TypePhone
	if r.PIITypes[0] != pii.TypeSSN {
		t.Error("receipt shares the caller's slice")
	}
}
