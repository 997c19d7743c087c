package rollcall

import (
	"fmt"
	"sort"

	"rollcall-backend/lib/scrapers/attendance"
	"rollcall-backend/lib/scrapers/committee"
	"rollcall-backend/lib/textutil"

	"github.com/antzucaro/matchr"
)

// rollCallState maps a sheet-side attendance state onto the platform-side
// roll-call state. Attending in person and attending online are both
// "present" as far as the platform is concerned; everything else carries
// over under the same name.
func rollCallState(s attendance.State) committee.State {
	switch s {
	case attendance.StateInPerson, attendance.StateOnline:
		return committee.StatePresent
	case attendance.StateLeave:
		return committee.StateLeave
	case attendance.StateAbsent:
		return committee.StateAbsent
	default:
		return committee.StateUnknown
	}
}

// recordKey mirrors Member.Key: the group part is reduced to digits so a
// record joins its roster row even when one side decorates the label.
func recordKey(r attendance.Record) string {
	return fmt.Sprintf("%s-%s", textutil.ConvertToGroupNumber(r.GroupNumber), r.Name)
}

// reconcile assigns each roster member the state reported for it in the
// attendance records, matching on the composite group-name key. Members
// are mutated in place; records with no roster match are left for the
// anomaly report. The outcome does not depend on the order of either
// input, except that duplicate roster keys collapse last-write-wins.
func reconcile(members []committee.Member, records []attendance.Record) {
	index := make(map[string]*committee.Member, len(members))
	for i := range members {
		index[members[i].Key()] = &members[i]
	}

	for _, r := range records {
		m, ok := index[recordKey(r)]
		if !ok {
			continue
		}
		m.State = rollCallState(r.State)
	}
}

// anomalies are the two symmetric key-set differences between the
// attendance records and the roster snapshot. Both are informational,
// never fatal.
type anomalies struct {
	// NotOnPlatform lists attendance keys with no roster row.
	NotOnPlatform []string
	// NoFeedback lists roster keys no sheet reported on.
	NoFeedback []string
}

func computeAnomalies(records []attendance.Record, members []committee.Member) anomalies {
	recordKeys := make(map[string]bool, len(records))
	for _, r := range records {
		recordKeys[recordKey(r)] = true
	}
	memberKeys := make(map[string]bool, len(members))
	for _, m := range members {
		memberKeys[m.Key()] = true
	}

	var out anomalies
	for k := range recordKeys {
		if !memberKeys[k] {
			out.NotOnPlatform = append(out.NotOnPlatform, k)
		}
	}
	for k := range memberKeys {
		if !recordKeys[k] {
			out.NoFeedback = append(out.NoFeedback, k)
		}
	}
	sort.Strings(out.NotOnPlatform)
	sort.Strings(out.NoFeedback)
	return out
}

// matchSuggestion pairs an unmatched key with the most similar key from
// the other source, to help the operator spot typos and alias mismatches.
type matchSuggestion struct {
	Key        string
	Closest    string
	Similarity float64
}

func suggestMatches(unmatched, candidates []string) []matchSuggestion {
	var out []matchSuggestion
	for _, key := range unmatched {
		var best string
		var bestSimilarity float64
		for _, c := range candidates {
			similarity := matchr.JaroWinkler(key, c, false)
			if similarity > bestSimilarity {
				bestSimilarity = similarity
				best = c
			}
		}
		if best == "" {
			continue
		}
		out = append(out, matchSuggestion{
			Key:        key,
			Closest:    best,
			Similarity: bestSimilarity,
		})
	}
	return out
}
