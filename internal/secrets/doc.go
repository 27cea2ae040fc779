// SPDX-License-Identifier: MPL-2.0

// Package secrets resolves secret references embedded in RUNSEC_SECRET_*
// environment variables. A reference is either delimited ({{op://...}})
// or bare (op://..., legacy), and resolution is delegated to a pluggable
// Backend so the pipeline can be tested without a secret manager installed.
//
// The pipeline runs in phases: scan the environ snapshot for candidate
// variables, parse each value for references, resolve all distinct
// references concurrently (bounded pool, per-run cache), then expand
// inter-variable $NAME dependencies in topological order via the expand
// package. Resolved values are never logged.
package secrets
