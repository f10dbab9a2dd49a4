package metrics

import (
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/topology"
)

// Collector periodically samples a topology.State and updates the
// status gauges declared in metrics.go.
type Collector struct {
	state  *topology.State
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector over state.
func NewCollector(state *topology.State) *Collector {
	return &Collector{
		state:  state,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics on a 15-second interval.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectNodeMetrics()
	c.collectGroupMetrics()
	c.collectCoupleMetrics()
}

func (c *Collector) collectNodeMetrics() {
	counts := make(map[topology.Status]int)
	for _, n := range c.state.Nodes.All() {
		counts[n.Status()]++
	}
	for status, count := range counts {
		NodesTotal.WithLabelValues(string(status)).Set(float64(count))
	}
}

func (c *Collector) collectGroupMetrics() {
	counts := make(map[topology.Status]int)
	for _, g := range c.state.Groups.All() {
		counts[g.Status()]++
	}
	for status, count := range counts {
		GroupsTotal.WithLabelValues(string(status)).Set(float64(count))
	}
}

func (c *Collector) collectCoupleMetrics() {
	counts := make(map[topology.Status]int)
	for _, cp := range c.state.Couples.All() {
		counts[cp.Status()]++
	}
	for status, count := range counts {
		CouplesTotal.WithLabelValues(string(status)).Set(float64(count))
	}
}
