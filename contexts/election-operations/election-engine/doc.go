// Package electionengine implements the election core inside the
// election-operations context.
//
// The module owns election scheduling and status resolution, candidate
// application moderation, the append-only vote ledger, tally computation and
// winner declaration, plus event production through outbox-backed workers.
// Business rules live in application/domain layers; infrastructure concerns
// stay behind ports and adapters.
package electionengine
