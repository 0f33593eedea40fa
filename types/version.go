package types

// Version is the canonical project version.
// The CLI, the session event contract, and the history record format all
// share this version (lockstep versioning).
const Version = "0.4.0"
