package announcer

import "github.com/frtsoysal/4castytwitterbot/gamma"

// selectBest returns the event with the highest volume, or false when events
// is empty. Ties keep the earliest event; negative volumes count as zero.
func selectBest(events []gamma.Event) (gamma.Event, bool) {
	if len(events) == 0 {
		return gamma.Event{}, false
	}
	best := events[0]
	bestVol := clampVolume(best.Volume.Value())
	for _, ev := range events[1:] {
		if v := clampVolume(ev.Volume.Value()); v > bestVol {
			best, bestVol = ev, v
		}
	}
	return best, true
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
