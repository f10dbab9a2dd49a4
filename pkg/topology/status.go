// Package topology implements the cluster topology model: hosts, nodes,
// groups and couples, their arithmetic, and the status state machines
// that derive health bottom-up from raw counters.
package topology

// Status is the health state of a node, group or couple.
type Status string

const (
	StatusInit    Status = "INIT"
	StatusOK      Status = "OK"
	StatusCoupled Status = "COUPLED"
	StatusBad     Status = "BAD"
	StatusRO      Status = "RO"
	StatusFrozen  Status = "FROZEN"
	StatusStalled Status = "STALLED"
)
