// Package store provides the persistence layer for fleetroster.
//
// The package defines the [Store] interface which abstracts every read and
// write of per-user fleet data. Three backends implement it:
//   - SQLite (modernc.org/sqlite), the default, in package sqldb
//   - PostgreSQL (lib/pq), sharing the SQL code of the SQLite backend
//   - BoltDB (go.etcd.io/bbolt), an embedded key-value store
//
// Records are stored as JSON documents; callers only ever see typed values
// from package model.
//
// # Opening a store
//
//	st, err := store.Open(ctx, store.Config{Driver: "sqlite", Path: "fleet.db"})
//	if err != nil {
//		return err
//	}
//	defer st.Close()
//
// # Absent records
//
// LoadConfig returns nil when a user has no configuration yet, LoadDay
// returns nil when nothing was saved for the date, and LoadRepairSet returns
// an empty slice. Defaults are applied by the caller, exactly once.
package store
