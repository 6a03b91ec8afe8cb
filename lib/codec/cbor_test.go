// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bureau-foundation/netsim/lib/contentid"
)

type storedOutput struct {
	Lines    []string `cbor:"lines"`
	ExitCode int      `cbor:"exit_code"`
	Code     string   `cbor:"code,omitempty"`
}

type dualTagged struct {
	Path    string       `json:"path"`
	Content contentid.ID `json:"content_id"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	t.Parallel()

	original := storedOutput{Lines: []string{"total 2", "motd"}, ExitCode: 0}
	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded storedOutput
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if strings.Join(decoded.Lines, "\n") != strings.Join(original.Lines, "\n") || decoded.ExitCode != 0 {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	t.Parallel()

	value := map[string]any{"zeta": 1, "alpha": []string{"a"}, "mid": true}
	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestContentIDAsText(t *testing.T) {
	t.Parallel()

	id := contentid.OfString("motd")
	data, err := Marshal(dualTagged{Path: "/etc/motd", Content: id})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	diagnostic, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(diagnostic, id.String()) {
		t.Errorf("content id not encoded as hex text: %s", diagnostic)
	}

	var decoded dualTagged
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Content != id {
		t.Errorf("content id = %s, want %s", decoded.Content, id)
	}
}

func TestAnyDecodesStringKeyedMaps(t *testing.T) {
	t.Parallel()

	data, err := Marshal(map[string]any{"kind": "sshSession", "nodeId": "gateway"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	handle, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, want map[string]any", decoded)
	}
	if handle["kind"] != "sshSession" {
		t.Errorf("kind = %v", handle["kind"])
	}
}

func TestStreamRoundtrip(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for i := range 3 {
		if err := encoder.Encode(storedOutput{ExitCode: i}); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}
	decoder := NewDecoder(&buffer)
	for i := range 3 {
		var got storedOutput
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode %d: %v", i, err)
		}
		if got.ExitCode != i {
			t.Errorf("message %d: exit code %d", i, got.ExitCode)
		}
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	t.Parallel()

	var decoded storedOutput
	if err := Unmarshal([]byte{0xff, 0x00}, &decoded); err == nil {
		t.Error("Unmarshal accepted invalid CBOR")
	}
}
