// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package result

// Envelope is the uniform shape every operation delivers to script-level
// callers. On success OK is true, Code is None, Err is nil and Data holds
// the operation-specific payload. On failure OK is false, Code and Err
// describe the failure and Data is nil.
type Envelope struct {
	OK   bool    `json:"ok"`
	Code Code    `json:"code"`
	Err  *string `json:"err"`
	Data any     `json:"data,omitempty"`
}

// Success wraps a payload in a successful envelope.
func Success(data any) Envelope {
	return Envelope{OK: true, Code: None, Data: data}
}

// Failure converts err into a failed envelope. A nil err yields a
// successful envelope with no payload, so callers can pass through the
// error from any operation without a branch.
func Failure(err error) Envelope {
	if err == nil {
		return Success(nil)
	}
	reason := err.Error()
	return Envelope{OK: false, Code: CodeOf(err), Err: &reason}
}

// From combines a value and an error the way Go functions return them.
// The value is discarded when err is non-nil.
func From(data any, err error) Envelope {
	if err != nil {
		return Failure(err)
	}
	return Success(data)
}

// Error returns the failure as an *Error, or nil for a successful
// envelope.
func (e Envelope) Error() error {
	if e.OK {
		return nil
	}
	reason := ""
	if e.Err != nil {
		reason = *e.Err
	}
	return &Error{Code: e.Code, Reason: reason}
}
