package hub

import (
	"time"

	"syncroom/internal/app/room"
)

// reap sweeps every room for members whose disconnection outlived the grace
// period and deletes rooms left empty afterwards. Runs on the hub loop on a
// fixed ticker.
//
// A present member is never reaped, however old their last state change is.
// Failures in one room are contained so the sweep always finishes.
func (h *Hub) reap(now time.Time) {
	var swept, closed int
	var empty []*room.Room

	for _, r := range h.registry.Rooms() {
		swept += h.reapRoom(r, now)
		if r.IsEmpty() {
			empty = append(empty, r)
		}
	}

	for _, r := range empty {
		h.registry.Delete(r.Slug)
		closed++
		h.logger.Info().Str("room_slug", r.Slug).Msg("Deleted empty room.")
	}

	if swept > 0 || closed > 0 {
		h.logger.Info().
			Int("users_swept", swept).
			Int("rooms_closed", closed).
			Msg("Reaper pass finished.")
	}
}

func (h *Hub) reapRoom(r *room.Room, now time.Time) (swept int) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error().
				Interface("panic", rec).
				Str("room_slug", r.Slug).
				Msg("Reaper failed in a room. Continuing the sweep.")
		}
	}()

	for _, u := range r.Users() {
		if u.State == room.PresencePresent {
			continue
		}
		if now.Sub(u.LastChange) <= h.reconnectGrace {
			continue
		}

		h.logger.Info().
			Str("room_slug", r.Slug).
			Str("user_id", u.ID).
			Str("state", string(u.State)).
			Msg("Reaping user whose reconnect window expired.")

		h.departUser(u)
		swept++
	}
	return swept
}
