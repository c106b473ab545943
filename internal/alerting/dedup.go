// internal/alerting/dedup.go
package alerting

import (
	"fmt"
	"math"

	"github.com/Sethnnections/solar-monitoring-system/internal/data"
)

// Deduplicate drops candidate alerts that duplicate one already retained in
// the same batch. Two alerts are the same when they share a type and their
// values agree to one decimal place (round half up). First occurrence wins.
//
// This is a same-batch filter only. Suppression against alerts persisted by
// earlier evaluations belongs to the alert repository; see
// AlertRepository.HasRecentUnresolved.
func Deduplicate(alerts []data.CandidateAlert) []data.CandidateAlert {
	if len(alerts) < 2 {
		return alerts
	}
	seen := make(map[string]struct{}, len(alerts))
	out := alerts[:0:0]
	for _, a := range alerts {
		key := dedupKey(a)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

func dedupKey(a data.CandidateAlert) string {
	return fmt.Sprintf("%s|%d", a.Type, int64(math.Round(a.Value*10)))
}
