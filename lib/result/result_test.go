// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, None},
		{"coded", Invalid("bad path %q", "x"), InvalidArgs},
		{"wrapped coded", fmt.Errorf("outer: %w", Missing("gone")), NotFound},
		{"uncoded", sentinel, InternalError},
		{"command code", New(Code("ConnectionRefused"), "refused"), Code("ConnectionRefused")},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := CodeOf(test.err); got != test.want {
				t.Errorf("CodeOf = %q, want %q", got, test.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("no such entry")
	err := Wrap(NotFound, sentinel, "reading %s", "/etc/motd")
	if !errors.Is(err, sentinel) {
		t.Fatal("errors.Is did not reach the wrapped cause")
	}
	if err.Error() != "reading /etc/motd: no such entry" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestPrefix(t *testing.T) {
	t.Parallel()

	err := Prefix("route.lastSession: ", Invalid("userId is empty"))
	if err.Code != InvalidArgs {
		t.Errorf("Code = %q, want InvalidArgs", err.Code)
	}
	if err.Reason != "route.lastSession: userId is empty" {
		t.Errorf("Reason = %q", err.Reason)
	}

	plain := Prefix("x: ", errors.New("y"))
	if plain.Code != InternalError {
		t.Errorf("uncoded prefix Code = %q, want InternalError", plain.Code)
	}
}

func TestKnown(t *testing.T) {
	t.Parallel()

	for _, code := range []Code{None, InvalidArgs, PermissionDenied, NotFound, NotDirectory,
		IsDirectory, NotTextFile, AlreadyExists, TooLarge, InternalError} {
		if !code.Known() {
			t.Errorf("%q should be known", code)
		}
	}
	if Code("ConnectionRefused").Known() {
		t.Error("command-reported code should not be in the closed set")
	}
}

func TestEnvelopeJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Failure(Denied("write privilege required")))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"ok":false,"code":"PermissionDenied","err":"write privilege required"}`
	if string(data) != want {
		t.Errorf("failure envelope = %s, want %s", data, want)
	}

	data, err = json.Marshal(Success(map[string]int{"size": 3}))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want = `{"ok":true,"code":"None","err":null,"data":{"size":3}}`
	if string(data) != want {
		t.Errorf("success envelope = %s, want %s", data, want)
	}
}

func TestEnvelopeError(t *testing.T) {
	t.Parallel()

	if err := Success(1).Error(); err != nil {
		t.Errorf("Success.Error() = %v, want nil", err)
	}
	err := From(nil, New(TooLarge, "output is 10 bytes, limit 4")).Error()
	if CodeOf(err) != TooLarge {
		t.Errorf("CodeOf(envelope error) = %q, want TooLarge", CodeOf(err))
	}
	if envelope := From("ignored", Missing("x")); envelope.Data != nil {
		t.Errorf("failed envelope carries data %v", envelope.Data)
	}
}
