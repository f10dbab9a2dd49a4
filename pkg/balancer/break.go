package balancer

import (
	"context"
	"fmt"

	"github.com/mastermind-cluster/mastermind/pkg/metrics"
	"github.com/mastermind-cluster/mastermind/pkg/storageclient"
	"github.com/mastermind-cluster/mastermind/pkg/topology"
)

// BreakCouple deletes the symmetric-groups key from every member of c
// and destroys the in-memory couple, after checking a literal
// confirmation string naming the couple's current good/bad standing
// (spec.md §4.7 "break_couple"). force skips the confirmation check
// entirely.
func BreakCouple(ctx context.Context, session storageclient.Session, state *topology.State, c *topology.Couple, confirmation string, force bool) error {
	if !force {
		if !validConfirmation(c, confirmation) {
			return fmt.Errorf("Incorrect confirmation string")
		}
	}

	if err := KillSymmGroup(ctx, session, c); err != nil {
		return err
	}

	state.Couples.Remove(c.ID())
	c.Destroy()
	metrics.CouplesBrokenTotal.Inc()
	return nil
}

func validConfirmation(c *topology.Couple, confirmation string) bool {
	kind := "bad"
	switch c.Status() {
	case topology.StatusOK, topology.StatusFrozen:
		kind = "good"
	}
	want := fmt.Sprintf("Yes, I want to break %s couple %s", kind, c.ID())
	return confirmation == want || confirmation == "["+want+"]"
}
