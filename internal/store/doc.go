// Package store defines the persistence interfaces the rest of the
// application depends on, together with the sentinel errors those
// interfaces return. Implementations live in internal/platform/postgres.
//
// The ingestion pipeline and the scheduled-job engine only ever touch the
// database through these interfaces, which keeps both testable with
// in-memory fakes and keeps the keyed-upsert contract in one place.
package store
