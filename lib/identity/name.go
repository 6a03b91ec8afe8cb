// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import "fmt"

// MaxNameLength bounds node and user names.
const MaxNameLength = 64

// nameChars is the permitted name charset: a-z, 0-9, and . _ = -
var nameChars [256]bool

func init() {
	for c := 'a'; c <= 'z'; c++ {
		nameChars[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		nameChars[c] = true
	}
	nameChars['.'] = true
	nameChars['_'] = true
	nameChars['='] = true
	nameChars['-'] = true
}

// ValidateName checks a node or user name. kind names the field in
// error messages ("node", "user").
//
// Rules enforced:
//   - Non-empty
//   - Only lowercase a-z, 0-9, ., _, =, -
//   - Does not start with "."
//   - At most 64 characters
func ValidateName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name is empty", kind)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%s name is %d characters, maximum is %d", kind, len(name), MaxNameLength)
	}
	for i := 0; i < len(name); i++ {
		if !nameChars[name[i]] {
			return fmt.Errorf("%s name %q: invalid character %q at position %d (allowed: a-z, 0-9, ., _, =, -)", kind, name, name[i], i)
		}
	}
	if name[0] == '.' {
		return fmt.Errorf("%s name %q starts with '.'", kind, name)
	}
	return nil
}
