package domain

import (
	"math/rand/v2"
	"time"
)

// Queue holds the current track and the ordered list of upcoming tracks.
// Upcoming tracks are 0-indexed here; the presentation layer shows them 1-indexed.
type Queue struct {
	current  *Track
	previous *Track
	upcoming []*Track
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{
		upcoming: make([]*Track, 0),
	}
}

// Current returns the track being played, or nil.
func (q *Queue) Current() *Track {
	return q.current
}

// Previous returns the last track that finished or was skipped, or nil.
func (q *Queue) Previous() *Track {
	return q.previous
}

// Len returns the number of upcoming tracks (the current track is not counted).
func (q *Queue) Len() int {
	return len(q.upcoming)
}

// IsEmpty returns true if there are no upcoming tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// IsIdle returns true if there is neither a current nor an upcoming track.
func (q *Queue) IsIdle() bool {
	return q.current == nil && q.IsEmpty()
}

func (q *Queue) isValidIndex(index int) bool {
	return 0 <= index && index < q.Len()
}

// Upcoming returns a copy of the upcoming tracks.
func (q *Queue) Upcoming() []*Track {
	result := make([]*Track, len(q.upcoming))
	copy(result, q.upcoming)
	return result
}

// Duration returns the total duration of the upcoming tracks, ignoring streams.
func (q *Queue) Duration() (total time.Duration) {
	for _, t := range q.upcoming {
		if !t.IsStream {
			total += t.Duration
		}
	}
	return total
}

// Append adds tracks to the end of the queue.
func (q *Queue) Append(tracks ...*Track) {
	q.upcoming = append(q.upcoming, tracks...)
}

// At returns the upcoming track at the given index, or nil if out of bounds.
func (q *Queue) At(index int) *Track {
	if !q.isValidIndex(index) {
		return nil
	}
	return q.upcoming[index]
}

// RemoveAt removes and returns the upcoming track at the given index.
// Returns nil and leaves the queue untouched if the index is out of bounds.
func (q *Queue) RemoveAt(index int) *Track {
	if !q.isValidIndex(index) {
		return nil
	}

	track := q.upcoming[index]
	q.upcoming = append(q.upcoming[:index], q.upcoming[index+1:]...)
	return track
}

// Move relocates the upcoming track at from to index to, shifting the tracks in between.
// Returns false without mutating if either index is out of bounds.
func (q *Queue) Move(from, to int) bool {
	if !q.isValidIndex(from) || !q.isValidIndex(to) {
		return false
	}
	if from == to {
		return true
	}

	track := q.upcoming[from]
	q.upcoming = append(q.upcoming[:from], q.upcoming[from+1:]...)
	q.upcoming = append(q.upcoming[:to], append([]*Track{track}, q.upcoming[to:]...)...)
	return true
}

// Shuffle randomizes the order of the upcoming tracks.
func (q *Queue) Shuffle() {
	rand.Shuffle(len(q.upcoming), func(i, j int) {
		q.upcoming[i], q.upcoming[j] = q.upcoming[j], q.upcoming[i]
	})
}

// Advance finishes the current track and returns the new current track,
// or nil when nothing is left to play.
//   - LoopModeNone: the next upcoming track becomes current
//   - LoopModeTrack: the current track stays current
//   - LoopModeQueue: the current track is re-appended before advancing
func (q *Queue) Advance(mode LoopMode) *Track {
	if mode == LoopModeTrack && q.current != nil {
		return q.current
	}

	if q.current != nil {
		q.previous = q.current
		if mode == LoopModeQueue {
			q.upcoming = append(q.upcoming, q.current)
		}
	}

	if q.IsEmpty() {
		q.current = nil
		return nil
	}

	q.current = q.upcoming[0]
	q.upcoming = q.upcoming[1:]
	return q.current
}

// Skip drops the current track plus the next amount-1 upcoming tracks and
// returns the new current track. Track looping is ignored; in queue loop mode
// the skipped tracks are re-appended.
func (q *Queue) Skip(amount int, mode LoopMode) *Track {
	if mode == LoopModeTrack {
		mode = LoopModeNone
	}
	for range max(amount, 1) - 1 {
		if q.IsEmpty() {
			break
		}
		skipped := q.upcoming[0]
		q.upcoming = q.upcoming[1:]
		if mode == LoopModeQueue {
			q.upcoming = append(q.upcoming, skipped)
		}
	}
	return q.Advance(mode)
}

// DropCurrent discards the current track without re-queueing it, whatever
// the loop mode. It returns the dropped track, or nil.
func (q *Queue) DropCurrent() *Track {
	dropped := q.current
	if dropped != nil {
		q.previous = dropped
	}
	q.current = nil
	return dropped
}

// Clear removes the current and all upcoming tracks and returns how many were removed.
func (q *Queue) Clear() int {
	count := q.Len()
	if q.current != nil {
		q.previous = q.current
		count++
	}
	q.current = nil
	q.upcoming = make([]*Track, 0)
	return count
}
