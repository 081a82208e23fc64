package viewer

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/ringtoss/backend/internal/game"
)

const sampleRate = beep.SampleRate(44100)

// Sound plays short cues for session events through one mixer.
type Sound struct {
	mixer *beep.Mixer
	muted bool
}

// NewSound opens the speaker. Callers treat an error as "run silently".
func NewSound() (*Sound, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return nil, err
	}
	s := &Sound{mixer: &beep.Mixer{}}
	speaker.Play(s.mixer)
	return s, nil
}

// ToggleMute flips muting and returns the new state.
func (s *Sound) ToggleMute() bool {
	if s == nil {
		return true
	}
	s.muted = !s.muted
	return s.muted
}

// Muted reports whether cues are suppressed. A nil Sound is always muted.
func (s *Sound) Muted() bool { return s == nil || s.muted }

// Play queues the cue for each event.
func (s *Sound) Play(events []game.Event) {
	if s.Muted() {
		return
	}
	for _, ev := range events {
		if cue := Cue(ev.Type); cue != nil {
			s.play(cue)
		}
	}
}

func (s *Sound) play(notes []Note) {
	var parts []beep.Streamer
	for _, n := range notes {
		tone, err := generators.SineTone(sampleRate, n.Freq)
		if err != nil {
			continue
		}
		parts = append(parts, beep.Take(sampleRate.N(n.Length), &effects.Gain{Streamer: tone, Gain: -0.75}))
	}
	if len(parts) == 0 {
		return
	}
	speaker.Lock()
	s.mixer.Add(beep.Seq(parts...))
	speaker.Unlock()
}

// Note is one tone of a cue.
type Note struct {
	Freq   float64
	Length time.Duration
}

// Cue returns the notes played for an event type, or nil for silence.
func Cue(t game.EventType) []Note {
	switch t {
	case game.EventRingSeated:
		return []Note{{880, 90 * time.Millisecond}, {1320, 90 * time.Millisecond}}
	case game.EventRingUnseated:
		return []Note{{440, 80 * time.Millisecond}, {330, 120 * time.Millisecond}}
	case game.EventRoundWon:
		return []Note{
			{523.25, 110 * time.Millisecond},
			{659.25, 110 * time.Millisecond},
			{783.99, 110 * time.Millisecond},
			{1046.5, 260 * time.Millisecond},
		}
	case game.EventBubblePopped:
		return []Note{{1600, 25 * time.Millisecond}}
	}
	return nil
}
