// Package fleet holds the roster bookkeeping: the unit pool derived from the
// configured ranges, the repair set, and the daily assignment ledger.
//
// The ledger keeps one invariant above all others: a unit appears in at most
// one station assignment per day. Unit state is never stored; it is derived
// from the repair set and the ledger contents on every call:
//
//	in repair  if the unit is in the RepairSet
//	assigned   if any assignment of the day lists it
//	free       otherwise
//
// Every ledger operation is all-or-nothing. Validation failures are returned
// as typed errors ([RangeOverlapError], [StationUnavailableError],
// [EmptySelectionError], [DuplicateUnitError], [UnitUnavailableError]) and
// leave the ledger untouched.
//
// [Session] bundles the state of one editing session for a (user, date) pair
// and talks to a [Persistence] implementation. Store failures surface as
// [PersistenceError] and never roll back the in-memory ledger.
//
// A Ledger is not safe for concurrent use.
package fleet
