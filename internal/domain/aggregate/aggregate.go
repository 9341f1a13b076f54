package aggregate

import (
	"sort"

	"github.com/rpggio/groupmeet/internal/domain/availability"
)

// Slot lists the users free at one slot.
type Slot struct {
	Participants []string `json:"participants"`
}

// Result is the merged availability of every counted user.
type Result struct {
	Total int    `json:"total"`
	Times []Slot `json:"times"`
}

// Ranked is a slot id with its participant count, used for best-time listings.
type Ranked struct {
	Slot         int      `json:"slot"`
	Count        int      `json:"count"`
	Heat         float64  `json:"heat"`
	Participants []string `json:"participants"`
}

// Aggregate merges per-user vectors into per-slot participant lists. Keys
// matching reserved are skipped entirely. Vectors are expected to be
// normalized to slotCount; extra entries are ignored.
func Aggregate(records map[string]availability.Vector, slotCount int, reserved func(string) bool) Result {
	if slotCount < 0 {
		slotCount = 0
	}
	result := Result{Times: make([]Slot, slotCount)}
	for i := range result.Times {
		result.Times[i].Participants = []string{}
	}

	users := make([]string, 0, len(records))
	for user := range records {
		if reserved != nil && reserved(user) {
			continue
		}
		users = append(users, user)
	}
	sort.Strings(users)

	for _, user := range users {
		result.Total++
		for i, free := range records[user] {
			if i >= slotCount {
				break
			}
			if free {
				result.Times[i].Participants = append(result.Times[i].Participants, user)
			}
		}
	}
	return result
}

// Heat returns the fraction of counted users free at slot, or 0 without users.
func (r Result) Heat(slot int) float64 {
	if r.Total == 0 || slot < 0 || slot >= len(r.Times) {
		return 0
	}
	return float64(len(r.Times[slot].Participants)) / float64(r.Total)
}

// Heats returns the heat ratio of every slot.
func (r Result) Heats() []float64 {
	heats := make([]float64, len(r.Times))
	for i := range r.Times {
		heats[i] = r.Heat(i)
	}
	return heats
}

// Best ranks slots with at least minParticipants users by participant count,
// busiest first, ties broken by slot id. A limit of 0 returns every match.
func (r Result) Best(limit, minParticipants int) []Ranked {
	if minParticipants < 1 {
		minParticipants = 1
	}
	var ranked []Ranked
	for i, slot := range r.Times {
		if len(slot.Participants) < minParticipants {
			continue
		}
		ranked = append(ranked, Ranked{
			Slot:         i,
			Count:        len(slot.Participants),
			Heat:         r.Heat(i),
			Participants: slot.Participants,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
