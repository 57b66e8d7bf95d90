package syncer

import "github.com/agrisense/agrisense/internal/crop"

// MergeStrategy resolves divergent local and remote saved crop sets
// into one. It is a named, swappable policy so alternative resolutions
// (e.g. last-write-timestamp-wins) can be substituted without touching
// the reconciler.
type MergeStrategy func(local, remote []crop.Crop) []crop.Crop

// LocalWins starts from the remote set and overlays the local set,
// local copy winning on identity-key collisions. The assumption is
// that the local device holds the newer unsynced edits.
//
// Known limitation, kept deliberately: a genuinely concurrent remote
// edit made between fetch and write-back is silently overwritten. There
// is no version vector or last-modified comparison; convergence without
// a coordinator is bought at that price.
func LocalWins(local, remote []crop.Crop) []crop.Crop {
	merged := make([]crop.Crop, 0, len(remote)+len(local))
	index := make(map[string]int, len(remote))

	for _, c := range remote {
		index[c.IdentityKey()] = len(merged)
		merged = append(merged, c)
	}

	for _, c := range local {
		if i, ok := index[c.IdentityKey()]; ok {
			merged[i] = c
			continue
		}
		index[c.IdentityKey()] = len(merged)
		merged = append(merged, c)
	}

	return merged
}
