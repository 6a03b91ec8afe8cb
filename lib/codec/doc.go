// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR configuration shared by netsim
// packages.
//
// netsim uses two serialization formats with a clear boundary:
//
//   - JSON for everything a caller reads: result envelopes, CLI
//     output, handle maps.
//   - CBOR for internal state: overlay snapshots saved by the CLI and
//     job output stored in the job ledger.
//
// The encoder uses Core Deterministic Encoding, so the same logical
// state always produces identical bytes and saved snapshots can be
// compared byte-for-byte.
//
//	data, err := codec.Marshal(snapshot)
//	err = codec.Unmarshal(data, &snapshot)
//
// # Struct Tag Rules
//
//   - `cbor` tag: the type is only serialized as CBOR (snapshot layers,
//     stored job output).
//   - `json` tag: the type may be serialized as both; fxamacker/cbor
//     falls back to json tags when no cbor tag is present.
package codec
