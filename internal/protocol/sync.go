package protocol

import "fmt"

// Playback sync states.
const (
	SyncIdle    = "idle"
	SyncPaused  = "paused"
	SyncPlaying = "playing"
)

// SyncState is the room's shared playback state, a tagged variant keyed by
// State. Media carries an opaque attested media token for the paused and
// playing variants.
type SyncState struct {
	State string `json:"state"`

	// paused and playing
	Media string `json:"media,omitempty"`

	// paused only: position in seconds from the start of the media.
	Position float64 `json:"position,omitempty"`

	// playing only
	Offset float64 `json:"offset,omitempty"`
	Rate   float64 `json:"rate,omitempty"`
}

// IdleSync returns the initial sync state of a room.
func IdleSync() SyncState {
	return SyncState{State: SyncIdle}
}

// Validate checks the variant-specific shape of the state.
func (s *SyncState) Validate() error {
	switch s.State {
	case SyncIdle:
		return nil
	case SyncPaused:
		if len(s.Media) < MinMediaTokenLength {
			return fmt.Errorf("paused state requires a media token")
		}
		if s.Position < 0 {
			return fmt.Errorf("position cannot be negative")
		}
	case SyncPlaying:
		if len(s.Media) < MinMediaTokenLength {
			return fmt.Errorf("playing state requires a media token")
		}
		if s.Rate < 0 {
			return fmt.Errorf("rate cannot be negative")
		}
	default:
		return fmt.Errorf("unknown sync state %q", s.State)
	}
	return nil
}

// PlaybackStats are per-client playback health numbers reported on request.
type PlaybackStats struct {
	Latency float64 `json:"latency" validate:"gte=0"`
	Offset  float64 `json:"offset"`
	Buffer  float64 `json:"buffer" validate:"gte=0"`
}
