package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/usermap/pkg/types"
)

// maxUnusedScan bounds the [lo, hi] walk for unused ids. Wider ranges are
// scanned up to the highest assigned id, and never past maxUnusedScan ids.
const maxUnusedScan = 10000

// Report lists non-fatal findings from Validate.
type Report struct {
	// Placeholders are keys whose user_id is still null.
	Placeholders []string
	// Unused are ids in [lo, hi] no entry uses. Only filled when hi > 0.
	// Ranges wider than maxUnusedScan stop at the highest assigned id.
	Unused []int
}

// Validate checks assigned user ids: each must lie in [lo, hi] (hi 0
// means no upper bound) and no two keys may share one. All violations are
// returned together.
func Validate(m *types.Mapping, lo, hi int) (Report, error) {
	var report Report
	var errs []error

	owners := make(map[int][]string)
	for _, e := range m.Entries {
		if !e.Assigned() {
			report.Placeholders = append(report.Placeholders, e.Key)
			continue
		}
		id := *e.UserID
		if id < lo || (hi > 0 && id > hi) {
			errs = append(errs, fmt.Errorf("%w: %q user_id %d outside %s", types.ErrParse, e.Key, id, rangeString(lo, hi)))
			continue
		}
		owners[id] = append(owners[id], e.Key)
	}

	ids := make([]int, 0, len(owners))
	highest := lo - 1
	for id := range owners {
		ids = append(ids, id)
		highest = max(highest, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if keys := owners[id]; len(keys) > 1 {
			errs = append(errs, fmt.Errorf("%w: user_id %d assigned to %s", types.ErrDuplicateKey, id, strings.Join(keys, ", ")))
		}
	}

	if hi > 0 {
		end := hi
		if hi-lo >= maxUnusedScan {
			end = min(highest, lo+maxUnusedScan-1)
		}
		for id := lo; id <= end; id++ {
			if _, ok := owners[id]; !ok {
				report.Unused = append(report.Unused, id)
			}
		}
	}
	return report, errors.Join(errs...)
}

func rangeString(lo, hi int) string {
	if hi > 0 {
		return fmt.Sprintf("range %d..%d", lo, hi)
	}
	return fmt.Sprintf("range %d..", lo)
}
