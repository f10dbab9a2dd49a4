/*
Package log provides structured logging for the coordinator using zerolog.

The package wraps zerolog to give every component (reconciler, balancer,
scheduler, transport) a JSON-structured logger tagged with the ids that
matter for this domain — component name, node address, group id, couple
id, scheduler task id — instead of generic request/trace ids.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - zerolog instance                         │          │
	│  │  - initialized via log.Init()               │          │
	│  │  - safe for concurrent use                  │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("reconciler")              │          │
	│  │  - WithNodeAddr("host1:1025")                │          │
	│  │  - WithGroupID(42)                           │          │
	│  │  - WithCoupleID("1:2:3")                     │          │
	│  │  - WithTaskID("symm_group_sweep")            │          │
	│  └──────────────────────────────────────────────┘          │
	│                                                            │
	└────────────────────────────────────────────────────────────┘

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	logger := log.WithComponent("reconciler")
	logger.Info().Int("group_id", 42).Msg("group meta refreshed")

Call Init once at process startup, before any component logger is
derived, so every child logger inherits the configured level and
writer.
*/
package log
