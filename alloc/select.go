package alloc

import "github.com/vsariola/polyvoice"

func (a *Allocator) claimable(i int) bool {
	return a.claimed&(1<<uint(i)) == 0
}

// findIdle returns the lowest idle slot in the eligible range, or -1.
func (a *Allocator) findIdle() int {
	for i := range a.voiceCount {
		if a.claimable(i) && a.slots[i].state == polyvoice.Idle {
			return i
		}
	}
	return -1
}

// findVictim returns a slot to steal, or -1 if every slot is claimed. Slots
// in Releasing state are preferred over Active ones; within the preferred
// state the allocation mode decides. Ties go to the lowest index.
func (a *Allocator) findVictim() int {
	want := polyvoice.Active
	for i := range a.voiceCount {
		if a.claimable(i) && a.slots[i].state == polyvoice.Releasing {
			want = polyvoice.Releasing
			break
		}
	}
	if a.allocationMode == polyvoice.RoundRobin {
		for k := range a.voiceCount {
			i := (a.cursor + k) % a.voiceCount
			if a.claimable(i) && a.slots[i].state == want {
				return i
			}
		}
		return -1
	}
	best, bestKey := -1, int64(0)
	for i := range a.voiceCount {
		if !a.claimable(i) || a.slots[i].state != want {
			continue
		}
		// every member of a group gets the same key, so the strict
		// comparison leaves the group represented by its lowest slot
		if key := a.groupKey(i, want); best == -1 || key < bestKey {
			best, bestKey = i, key
		}
	}
	return best
}

// groupKey is the steal priority of the group that slot i belongs to; smaller
// is stolen first. The group is judged by its most favourable member: the
// earliest timestamp, the lowest velocity or the highest note.
func (a *Allocator) groupKey(i int, want polyvoice.VoiceState) int64 {
	note := a.slots[i].note
	ret := a.key(&a.slots[i])
	for j := range a.voiceCount {
		s := &a.slots[j]
		if j == i || s.note != note || s.state != want || !a.claimable(j) {
			continue
		}
		ret = min(ret, a.key(s))
	}
	return ret
}

func (a *Allocator) key(s *slot) int64 {
	switch a.allocationMode {
	case polyvoice.LowestVelocity:
		return int64(s.velocity)
	case polyvoice.HighestNote:
		return -int64(s.note)
	default:
		return int64(s.timestamp)
	}
}

// evict frees every slot of the group that slot i belongs to, emitting a
// Steal event (hard) or a NoteOff event (soft) for each.
func (a *Allocator) evict(i int) {
	note := a.slots[i].note
	typ := polyvoice.Steal
	if a.stealMode == polyvoice.Soft {
		typ = polyvoice.NoteOff
	}
	for j := range a.voiceCount {
		s := &a.slots[j]
		if s.state == polyvoice.Idle || s.note != note || !a.claimable(j) {
			continue
		}
		a.events.add(typ, j, s)
		a.free(j)
	}
}
