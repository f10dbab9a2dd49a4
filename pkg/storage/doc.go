/*
Package storage persists namespace settings across coordinator
restarts.

The coordinator's topology model (hosts, nodes, groups, couples) is
rebuilt from the storage fleet on every reload and is never persisted
on its own — but namespace settings (groups-count, success-copies-num,
an optional static-couple) are operator-supplied configuration with no
other durable home, so they are kept in a small BoltDB database.

# Layout

	┌──────────────────── STORAGE ──────────────────────┐
	│                                                      │
	│  Store interface                                    │
	│    GetSettings / ListSettings / PutSettings /       │
	│    DeleteSettings                                    │
	│                     │                                │
	│  BoltStore (single bucket "namespace_settings")     │
	│    key:   namespace name                            │
	│    value: JSON-encoded Settings                     │
	│                     │                                │
	│              bbolt.DB (single file)                  │
	└──────────────────────────────────────────────────────┘

A single bucket is sufficient here: unlike a full entity graph, the
namespace registry has exactly one record shape to persist, so there is
no second bucket to partition it against.
*/
package storage
