package coordinator

import (
	"context"
	"fmt"

	"github.com/mastermind-cluster/mastermind/pkg/storage"
	"github.com/mastermind-cluster/mastermind/pkg/transport"
	"github.com/mastermind-cluster/mastermind/pkg/wire"
)

const defaultNamespaceArg = wire.DefaultNamespace

// Register binds every handler named in spec.md §6 onto d.
func (co *Coordinator) Register(d transport.Dispatcher) {
	bind := func(name string, h transport.Handler) { transport.Bind(d, name, h) }

	bind("get_groups", co.handleGetGroups)
	bind("get_symmetric_groups", co.handleGetSymmetricGroups)
	bind("get_bad_groups", co.handleGetBadGroups)
	bind("get_frozen_groups", co.handleGetFrozenGroups)
	bind("get_closed_groups", co.handleGetClosedGroups)
	bind("get_empty_groups", co.handleGetEmptyGroups)
	bind("get_group_info", co.handleGetGroupInfo)
	bind("get_group_history", co.handleGetGroupHistory)
	bind("get_group_weights", co.handleGetGroupWeights)
	bind("get_couple_info", co.handleGetCoupleInfo)
	bind("groups_by_dc", co.handleGroupsByDC)
	bind("couples_by_namespace", co.handleCouplesByNamespace)
	bind("couple_groups", co.handleCoupleGroups)
	bind("break_couple", co.handleBreakCouple)
	bind("repair_groups", co.handleRepairGroups)
	bind("freeze_couple", co.handleFreezeCouple)
	bind("unfreeze_couple", co.handleUnfreezeCouple)
	bind("get_namespaces", co.handleGetNamespaces)
	bind("get_namespace_settings", co.handleGetNamespaceSettings)
	bind("get_namespaces_settings", co.handleGetNamespacesSettings)
	bind("namespace_setup", co.handleNamespaceSetup)
	bind("get_next_group_number", co.handleGetNextGroupNumber)
	bind("group_detach_node", co.handleGroupDetachNode)
	bind("force_nodes_update", co.handleForceNodesUpdate)
}

func (co *Coordinator) handleGetGroups(ctx context.Context, args []byte) (any, error) {
	return co.GetGroups(ctx)
}

func (co *Coordinator) handleGetSymmetricGroups(ctx context.Context, args []byte) (any, error) {
	return co.GetSymmetricGroups(ctx)
}

func (co *Coordinator) handleGetBadGroups(ctx context.Context, args []byte) (any, error) {
	return co.GetBadGroups(ctx)
}

func (co *Coordinator) handleGetFrozenGroups(ctx context.Context, args []byte) (any, error) {
	return co.GetFrozenGroups(ctx)
}

func (co *Coordinator) handleGetClosedGroups(ctx context.Context, args []byte) (any, error) {
	return co.GetClosedGroups(ctx)
}

func (co *Coordinator) handleGetEmptyGroups(ctx context.Context, args []byte) (any, error) {
	return co.GetEmptyGroups(ctx)
}

func (co *Coordinator) handleGetGroupInfo(ctx context.Context, args []byte) (any, error) {
	id, err := decodeInt(args)
	if err != nil {
		return nil, err
	}
	return co.GetGroupInfo(ctx, id)
}

func (co *Coordinator) handleGetGroupHistory(ctx context.Context, args []byte) (any, error) {
	id, err := decodeInt(args)
	if err != nil {
		return nil, err
	}
	return co.GetGroupHistory(ctx, id)
}

func (co *Coordinator) handleGetGroupWeights(ctx context.Context, args []byte) (any, error) {
	return co.GetGroupWeights(ctx)
}

func (co *Coordinator) handleGetCoupleInfo(ctx context.Context, args []byte) (any, error) {
	id, err := decodeString(args)
	if err != nil {
		return nil, err
	}
	return co.GetCoupleInfo(ctx, id)
}

func (co *Coordinator) handleGroupsByDC(ctx context.Context, args []byte) (any, error) {
	return co.GroupsByDC(ctx)
}

func (co *Coordinator) handleCouplesByNamespace(ctx context.Context, args []byte) (any, error) {
	return co.CouplesByNamespace(ctx)
}

func (co *Coordinator) handleCoupleGroups(ctx context.Context, args []byte) (any, error) {
	items, err := decodeTuple(args)
	if err != nil {
		return nil, err
	}
	if len(items) < 1 {
		return nil, fmt.Errorf("couple_groups: expected (size, mandatory_ids?, namespace?)")
	}
	size, err := toInt(items[0])
	if err != nil {
		return nil, err
	}
	var mandatory []int
	if len(items) > 1 {
		if mandatory, err = toIntSlice(items[1]); err != nil {
			return nil, err
		}
	}
	ns := defaultNamespaceArg
	if len(items) > 2 {
		if ns, err = toString(items[2]); err != nil {
			return nil, err
		}
	}
	return co.CoupleGroups(ctx, size, mandatory, ns)
}

func (co *Coordinator) handleBreakCouple(ctx context.Context, args []byte) (any, error) {
	items, err := decodeTuple(args)
	if err != nil {
		return nil, err
	}
	if len(items) < 2 {
		return nil, fmt.Errorf("break_couple: expected (couple_id, confirmation, force?)")
	}
	coupleID, err := toString(items[0])
	if err != nil {
		return nil, err
	}
	confirmation, err := toString(items[1])
	if err != nil {
		return nil, err
	}
	force := false
	if len(items) > 2 {
		if force, err = toBool(items[2]); err != nil {
			return nil, err
		}
	}
	return nil, co.BreakCouple(ctx, coupleID, confirmation, force)
}

func (co *Coordinator) handleRepairGroups(ctx context.Context, args []byte) (any, error) {
	items, err := decodeTuple(args)
	if err != nil {
		return nil, err
	}
	if len(items) < 1 {
		return nil, fmt.Errorf("repair_groups: expected (group_id, force_namespace?)")
	}
	groupID, err := toInt(items[0])
	if err != nil {
		return nil, err
	}
	forceNamespace := ""
	if len(items) > 1 {
		if forceNamespace, err = toString(items[1]); err != nil {
			return nil, err
		}
	}
	return nil, co.RepairGroups(ctx, groupID, forceNamespace)
}

func (co *Coordinator) handleFreezeCouple(ctx context.Context, args []byte) (any, error) {
	id, err := decodeString(args)
	if err != nil {
		return nil, err
	}
	return nil, co.FreezeCouple(ctx, id)
}

func (co *Coordinator) handleUnfreezeCouple(ctx context.Context, args []byte) (any, error) {
	id, err := decodeString(args)
	if err != nil {
		return nil, err
	}
	return nil, co.UnfreezeCouple(ctx, id)
}

func (co *Coordinator) handleGetNamespaces(ctx context.Context, args []byte) (any, error) {
	return co.GetNamespaces(ctx)
}

func (co *Coordinator) handleGetNamespaceSettings(ctx context.Context, args []byte) (any, error) {
	ns, err := decodeString(args)
	if err != nil {
		return nil, err
	}
	return co.GetNamespaceSettings(ctx, ns)
}

func (co *Coordinator) handleGetNamespacesSettings(ctx context.Context, args []byte) (any, error) {
	return co.GetNamespacesSettings(ctx)
}

func (co *Coordinator) handleNamespaceSetup(ctx context.Context, args []byte) (any, error) {
	var settings storage.Settings
	if err := wire.Unmarshal(args, &settings); err != nil {
		return nil, fmt.Errorf("namespace_setup: decode args: %w", err)
	}
	return nil, co.NamespaceSetup(ctx, &settings)
}

func (co *Coordinator) handleGetNextGroupNumber(ctx context.Context, args []byte) (any, error) {
	n, err := decodeInt(args)
	if err != nil {
		return nil, err
	}
	return co.GetNextGroupNumber(ctx, n)
}

func (co *Coordinator) handleGroupDetachNode(ctx context.Context, args []byte) (any, error) {
	items, err := decodeTuple(args)
	if err != nil {
		return nil, err
	}
	if len(items) != 2 {
		return nil, fmt.Errorf("group_detach_node: expected (group_id, addr)")
	}
	groupID, err := toInt(items[0])
	if err != nil {
		return nil, err
	}
	addr, err := toString(items[1])
	if err != nil {
		return nil, err
	}
	return nil, co.GroupDetachNode(ctx, groupID, addr)
}

func (co *Coordinator) handleForceNodesUpdate(ctx context.Context, args []byte) (any, error) {
	return nil, co.ForceNodesUpdate(ctx)
}
