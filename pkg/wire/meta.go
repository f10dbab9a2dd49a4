package wire

import "fmt"

// DefaultNamespace is assigned to groups whose meta is the legacy v1
// encoding, which carries no namespace of its own.
const DefaultNamespace = "default"

// GroupMeta is the normalised, in-memory shape of a group's symmetric-
// groups record — both the legacy v1 (bare list of peer ids) and v2
// (versioned map) on-disk encodings parse into this one struct.
type GroupMeta struct {
	Version   int
	Couple    []int
	Namespace string
}

// rawGroupMetaV2 is the v2 on-disk encoding:
// {version:2, couple:[ids...], namespace:<str>}.
type rawGroupMetaV2 struct {
	Version   int    `codec:"version"`
	Couple    []int  `codec:"couple"`
	Namespace string `codec:"namespace"`
}

// ParseGroupMeta decodes a symmetric-groups blob. blob == nil is not a
// valid input for this function; callers that observe a missing key
// should not call ParseGroupMeta at all and instead treat the group's
// meta as absent (see topology.Group.ClearMeta).
func ParseGroupMeta(blob []byte) (*GroupMeta, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("wire: empty group meta blob")
	}

	if isArray(blob[0]) {
		var ids []int
		if err := Unmarshal(blob, &ids); err != nil {
			return nil, fmt.Errorf("wire: decode v1 group meta: %w", err)
		}
		return &GroupMeta{Version: 1, Couple: ids, Namespace: DefaultNamespace}, nil
	}

	var raw rawGroupMetaV2
	if err := Unmarshal(blob, &raw); err != nil {
		return nil, fmt.Errorf("wire: decode v2 group meta: %w", err)
	}
	if raw.Version != 2 {
		return nil, fmt.Errorf("wire: unsupported group meta version %d", raw.Version)
	}
	return &GroupMeta{Version: 2, Couple: raw.Couple, Namespace: raw.Namespace}, nil
}

// ComposeGroupMeta packs the v2 encoding for a couple's member groups.
func ComposeGroupMeta(couple []int, namespace string) ([]byte, error) {
	raw := rawGroupMetaV2{Version: 2, Couple: couple, Namespace: namespace}
	return Marshal(raw)
}

// CoupleMeta is the couple-meta auxiliary record: {frozen:<bool>}.
type CoupleMeta struct {
	Frozen bool `codec:"frozen"`
}

// ParseCoupleMeta decodes a couple-meta blob.
func ParseCoupleMeta(blob []byte) (*CoupleMeta, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("wire: empty couple meta blob")
	}
	var m CoupleMeta
	if err := Unmarshal(blob, &m); err != nil {
		return nil, fmt.Errorf("wire: decode couple meta: %w", err)
	}
	return &m, nil
}

// ComposeCoupleMeta packs the couple-meta auxiliary record.
func ComposeCoupleMeta(frozen bool) ([]byte, error) {
	return Marshal(CoupleMeta{Frozen: frozen})
}
