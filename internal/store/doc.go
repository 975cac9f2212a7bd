// Package store provides SQLite-backed storage for case counts and the
// place hierarchy they refer to.
//
// Tables:
//   - countries, provinces, counties: the place tree, linked by foreign keys
//   - cases: one amount per (type, date, place), unique on
//     (type, date, country_id, province_id or -1, county_id or -1)
//
// # Reads
//
// Case queries are built by internal/casequery and executed with Apply,
// which maps the positional result rows to rowmap.Records named after the
// statement's output columns. MapTable introspects a table's columns and
// maps every row the same way.
//
// # Writes
//
// UpsertCase and UpsertCases honour a model.ConflictStrategy: replace
// overwrites the stored amount, add accumulates into it. Writes run in a
// transaction and are validated with model.Validate first.
//
// # Connections
//
// Every operation borrows one *sql.Conn from the pool and issues all of its
// statements on it. Nothing is cached and nothing is retried; errors come
// back as apperr data-layer errors wrapping the driver error.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce the place tree
package store
