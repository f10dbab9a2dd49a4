package balancer

import (
	"context"
	"fmt"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/storageclient"
	"github.com/mastermind-cluster/mastermind/pkg/topology"
	"github.com/mastermind-cluster/mastermind/pkg/wire"
)

// FreezeCouple writes {frozen:true} to c's couple-meta key and flips
// its in-memory frozen flag. Idempotent calls fail loudly: freezing an
// already-frozen couple is a precondition error (spec.md §4.7).
func FreezeCouple(ctx context.Context, session storageclient.Session, c *topology.Couple) error {
	if c.Frozen() {
		return fmt.Errorf("Couple %s is already frozen", c.ID())
	}
	return writeFrozen(ctx, session, c, true)
}

// UnfreezeCouple writes {frozen:false} to c's couple-meta key and
// clears its in-memory frozen flag.
func UnfreezeCouple(ctx context.Context, session storageclient.Session, c *topology.Couple) error {
	if !c.Frozen() {
		return fmt.Errorf("Couple %s is not frozen", c.ID())
	}
	return writeFrozen(ctx, session, c, false)
}

func writeFrozen(ctx context.Context, session storageclient.Session, c *topology.Couple, frozen bool) error {
	blob, err := wire.ComposeCoupleMeta(frozen)
	if err != nil {
		return err
	}
	groups := c.Groups()
	if len(groups) == 0 {
		return fmt.Errorf("couple %s has no groups to write couple-meta through", c.ID())
	}
	if err := session.WriteData(ctx, groups[0].ID, storageclient.CoupleMetaKey(c.ID()), blob); err != nil {
		return err
	}
	c.SetFrozen(frozen)
	c.UpdateStatus(time.Now())
	return nil
}
