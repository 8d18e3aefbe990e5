package descriptor

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyOverlay merges overlay into raw as an RFC 7386 merge patch. Both are
// JSON documents; a null in the overlay removes the key. Note that arrays,
// including fields, are replaced wholesale.
func ApplyOverlay(raw, overlay []byte) ([]byte, error) {
	if len(overlay) == 0 {
		return raw, nil
	}
	merged, err := jsonpatch.MergePatch(raw, overlay)
	if err != nil {
		return nil, wrap("overlay", fmt.Errorf("merge patch: %w", err))
	}
	return merged, nil
}
