// Package allocator produces human-readable fault display identifiers.
//
// Allocation is deterministic over its input snapshot. Two clients holding
// the same stale snapshot can compute the same next identifier; the store
// offers no cross-document transaction, so this race is accepted and
// documented rather than locked away.
package allocator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/judzis-sketch/gedimu-registras/internal/models"
)

// Allocate returns the next display identifier given the current snapshot
// of existing display ids. Ids not matching the FAULT- prefix are ignored.
func Allocate(existing []string) string {
	max := 0
	for _, id := range existing {
		suffix, ok := strings.CutPrefix(id, models.DisplayIDPrefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n <= 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%04d", models.DisplayIDPrefix, max+1)
}
