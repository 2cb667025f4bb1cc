package signal

import (
	"testing"

	"github.com/google/uuid"
)

var assistant = uuid.MustParse("00000000-0000-0000-0000-00000000a551")

func TestExtractMentionsFlagSet(t *testing.T) {
	got := ExtractMentions([]byte(`{"assistantMentioned":true}`), assistant)
	if len(got) != 1 || got[0] != assistant {
		t.Fatalf("expected assistant sentinel, got %v", got)
	}
}

func TestExtractMentionsFlagUnsetOrAbsent(t *testing.T) {
	for _, meta := range []string{`{"assistantMentioned":false}`, `{}`, ``} {
		if got := ExtractMentions([]byte(meta), assistant); len(got) != 0 {
			t.Fatalf("metadata %q: expected no mentions, got %v", meta, got)
		}
	}
}

func TestExtractMentionsMalformedMetadata(t *testing.T) {
	if got := ExtractMentions([]byte(`{not json`), assistant); len(got) != 0 {
		t.Fatalf("malformed metadata must yield no mentions, got %v", got)
	}
}

func TestExtractMentionsNoAssistantConfigured(t *testing.T) {
	if got := ExtractMentions([]byte(`{"assistantMentioned":true}`), uuid.Nil); len(got) != 0 {
		t.Fatalf("nil assistant id must disable mentions, got %v", got)
	}
}

func TestExtractMentionsIsPure(t *testing.T) {
	meta := []byte(`{"assistantMentioned":true}`)
	a := ExtractMentions(meta, assistant)
	b := ExtractMentions(meta, assistant)
	if len(a) != len(b) || a[0] != b[0] {
		t.Fatalf("same input must yield same output: %v vs %v", a, b)
	}
}
