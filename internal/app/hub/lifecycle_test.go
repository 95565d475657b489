package hub

import (
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncroom/internal/protocol"
)

// openConn runs the full open handshake for a session's user and drains the
// roomHello frame, returning it alongside the connection.
func openConn(t *testing.T, h *Hub, sessionToken string) (*connection, protocol.RoomHelloBody) {
	t.Helper()

	var c *connection
	h.Do(func() {
		u := h.sessions.Get(sessionToken)
		require.NotNil(t, u)

		c = newConnection(h, nil, u)
		h.handleOpen(c)
	})

	t.Cleanup(func() {
		h.Do(func() {
			h.unsubscribe(c.topic, c)
			if c.user.Conn == c {
				c.user.Conn = nil
			}
		})
	})

	env := nextFrame(t, c)
	require.Equal(t, protocol.TypeRoomHello, env.Type)

	var hello protocol.RoomHelloBody
	require.NoError(t, json.Unmarshal(env.Body, &hello))
	return c, hello
}

func closeConn(h *Hub, c *connection, code int) {
	h.Do(func() { h.handleClose(c, code) })
}

func assertNoFrame(t *testing.T, c *connection) {
	t.Helper()

	select {
	case payload, ok := <-c.send:
		if ok {
			t.Fatalf("unexpected frame: %s", payload)
		}
	default:
	}
}

func TestOpenSendsHelloAndAnnouncesJoin(t *testing.T) {
	h := newTestHub(t)
	alice, _ := h.CreateRoom("movie-night", "Movie Night", "Alice", "")

	_, aliceHello := openConn(t, h, alice.SessionToken)

	assert.Equal(t, alice.UserID, aliceHello.You.ID)
	assert.Equal(t, alice.UserID, aliceHello.OwnerID)
	assert.Equal(t, "movie-night", aliceHello.Room.Slug)
	require.Len(t, aliceHello.Users, 1)
	assert.Equal(t, protocol.WireUserPresent, aliceHello.Users[0].State)

	bob, _ := h.JoinRoom("movie-night", "Bob", "")
	_, bobHello := openConn(t, h, bob.SessionToken)

	assert.Len(t, bobHello.Users, 2)
	assert.Equal(t, alice.UserID, bobHello.OwnerID)
}

func TestOpenBroadcastsUserJoinedToOthers(t *testing.T) {
	h := newTestHub(t)
	alice, _ := h.CreateRoom("movie-night", "Movie Night", "Alice", "")
	aliceConn, _ := openConn(t, h, alice.SessionToken)

	bob, _ := h.JoinRoom("movie-night", "Bob", "")
	openConn(t, h, bob.SessionToken)

	env := nextFrame(t, aliceConn)
	require.Equal(t, protocol.TypeUserJoined, env.Type)

	var joined protocol.WireUser
	require.NoError(t, json.Unmarshal(env.Body, &joined))
	assert.Equal(t, bob.UserID, joined.ID)
	assert.Equal(t, protocol.WireUserPresent, joined.State)
}

func TestDisconnectEntersReconnectingAndKeepsOwnership(t *testing.T) {
	h := newTestHub(t)
	alice, _ := h.CreateRoom("movie-night", "Movie Night", "Alice", "")
	aliceConn, _ := openConn(t, h, alice.SessionToken)

	bob, _ := h.JoinRoom("movie-night", "Bob", "")
	bobConn, _ := openConn(t, h, bob.SessionToken)
	nextFrame(t, aliceConn) // bob's userJoined

	closeConn(h, aliceConn, websocket.CloseAbnormalClosure)

	env := nextFrame(t, bobConn)
	require.Equal(t, protocol.TypeUserState, env.Type)

	var state protocol.UserStateBody
	require.NoError(t, json.Unmarshal(env.Body, &state))
	assert.Equal(t, alice.UserID, state.UserID)
	assert.Equal(t, protocol.WireUserDisconnected, state.State)

	h.Do(func() {
		r := h.registry.Get("movie-night")
		owner := r.Owner()
		require.NotNil(t, owner)
		assert.Equal(t, alice.UserID, owner.ID, "a disconnected owner keeps ownership through the grace window")
	})
	assert.NotNil(t, h.ResolveSession(alice.SessionToken))
}

func TestReconnectRestoresPresentWithoutElection(t *testing.T) {
	h := newTestHub(t)
	alice, _ := h.CreateRoom("movie-night", "Movie Night", "Alice", "")
	aliceConn, _ := openConn(t, h, alice.SessionToken)

	bob, _ := h.JoinRoom("movie-night", "Bob", "")
	bobConn, _ := openConn(t, h, bob.SessionToken)
	nextFrame(t, aliceConn)

	closeConn(h, aliceConn, websocket.CloseAbnormalClosure)
	nextFrame(t, bobConn) // alice's disconnected userState

	_, hello := openConn(t, h, alice.SessionToken)
	assert.Equal(t, alice.UserID, hello.OwnerID)

	// the room sees a presence transition, not a join and not an election
	env := nextFrame(t, bobConn)
	require.Equal(t, protocol.TypeUserState, env.Type)

	var state protocol.UserStateBody
	require.NoError(t, json.Unmarshal(env.Body, &state))
	assert.Equal(t, alice.UserID, state.UserID)
	assert.Equal(t, protocol.WireUserPresent, state.State)

	assertNoFrame(t, bobConn)
}

func TestLeaveDepartsAndBroadcastsUserLeft(t *testing.T) {
	h := newTestHub(t)
	alice, _ := h.CreateRoom("movie-night", "Movie Night", "Alice", "")
	aliceConn, _ := openConn(t, h, alice.SessionToken)

	bob, _ := h.JoinRoom("movie-night", "Bob", "")
	bobConn, _ := openConn(t, h, bob.SessionToken)
	nextFrame(t, aliceConn)

	closeConn(h, bobConn, protocol.CloseLeave)

	env := nextFrame(t, aliceConn)
	require.Equal(t, protocol.TypeUserLeft, env.Type)

	var left protocol.UserRefBody
	require.NoError(t, json.Unmarshal(env.Body, &left))
	assert.Equal(t, bob.UserID, left.UserID)

	assert.Nil(t, h.ResolveSession(bob.SessionToken))
	h.Do(func() {
		r := h.registry.Get("movie-night")
		assert.Equal(t, 1, r.Len())
		assert.Equal(t, alice.UserID, r.Owner().ID)
	})
}

func TestOwnerLeaveRunsElection(t *testing.T) {
	h := newTestHub(t)
	alice, _ := h.CreateRoom("movie-night", "Movie Night", "Alice", "")
	aliceConn, _ := openConn(t, h, alice.SessionToken)

	bob, _ := h.JoinRoom("movie-night", "Bob", "")
	bobConn, _ := openConn(t, h, bob.SessionToken)
	nextFrame(t, aliceConn)

	closeConn(h, aliceConn, protocol.CloseLeave)

	env := nextFrame(t, bobConn)
	require.Equal(t, protocol.TypeRoomUpdated, env.Type)

	var update protocol.RoomUpdatedBody
	require.NoError(t, json.Unmarshal(env.Body, &update))
	require.NotNil(t, update.OwnerID)
	assert.Equal(t, bob.UserID, *update.OwnerID)

	env = nextFrame(t, bobConn)
	require.Equal(t, protocol.TypeUserLeft, env.Type)

	var left protocol.UserRefBody
	require.NoError(t, json.Unmarshal(env.Body, &left))
	assert.Equal(t, alice.UserID, left.UserID)
}

func TestReconnectSupersedesOldConnectionQuietly(t *testing.T) {
	h := newTestHub(t)
	alice, _ := h.CreateRoom("movie-night", "Movie Night", "Alice", "")
	first, _ := openConn(t, h, alice.SessionToken)

	bob, _ := h.JoinRoom("movie-night", "Bob", "")
	bobConn, _ := openConn(t, h, bob.SessionToken)
	nextFrame(t, first)

	second, hello := openConn(t, h, alice.SessionToken)

	assert.True(t, first.serverClosed.Load())
	assert.Equal(t, alice.UserID, hello.You.ID)
	assertNoFrame(t, bobConn)

	h.Do(func() {
		u := h.sessions.Get(alice.SessionToken)
		assert.Same(t, second, u.Conn)
	})

	// the old socket's read pump ends next; its close event must not touch
	// the freshly bound connection
	closeConn(h, first, websocket.CloseAbnormalClosure)

	assertNoFrame(t, bobConn)
	h.Do(func() {
		u := h.sessions.Get(alice.SessionToken)
		assert.Same(t, second, u.Conn)
	})
}

func TestKickClosesTargetAndDeparts(t *testing.T) {
	h := newTestHub(t)
	alice, _ := h.CreateRoom("movie-night", "Movie Night", "Alice", "")
	aliceConn, _ := openConn(t, h, alice.SessionToken)

	bob, _ := h.JoinRoom("movie-night", "Bob", "")
	bobConn, _ := openConn(t, h, bob.SessionToken)
	nextFrame(t, aliceConn)

	dispatchRaw(h, aliceConn, `{"id":1,"type":"kick","body":{"userId":"`+bob.UserID+`"}}`)

	assert.True(t, bobConn.serverClosed.Load())
	assert.Nil(t, h.ResolveSession(bob.SessionToken))

	env := nextFrame(t, aliceConn)
	require.Equal(t, protocol.TypeUserLeft, env.Type)

	var left protocol.UserRefBody
	require.NoError(t, json.Unmarshal(env.Body, &left))
	assert.Equal(t, bob.UserID, left.UserID)

	// the kicked socket's close event finds nothing left to do
	closeConn(h, bobConn, websocket.CloseAbnormalClosure)
	h.Do(func() {
		assert.Equal(t, 1, h.registry.Get("movie-night").Len())
	})
}

func TestKickAllSparesOwner(t *testing.T) {
	h := newTestHub(t)
	alice, _ := h.CreateRoom("movie-night", "Movie Night", "Alice", "")
	aliceConn, _ := openConn(t, h, alice.SessionToken)

	bob, _ := h.JoinRoom("movie-night", "Bob", "")
	openConn(t, h, bob.SessionToken)
	nextFrame(t, aliceConn)

	carol, _ := h.JoinRoom("movie-night", "Carol", "")
	openConn(t, h, carol.SessionToken)
	nextFrame(t, aliceConn)

	dispatchRaw(h, aliceConn, `{"type":"kickAll","body":{}}`)

	kicked := map[string]bool{}
	for i := 0; i < 2; i++ {
		env := nextFrame(t, aliceConn)
		require.Equal(t, protocol.TypeUserLeft, env.Type)

		var left protocol.UserRefBody
		require.NoError(t, json.Unmarshal(env.Body, &left))
		kicked[left.UserID] = true
	}
	assert.True(t, kicked[bob.UserID])
	assert.True(t, kicked[carol.UserID])

	h.Do(func() {
		r := h.registry.Get("movie-night")
		assert.Equal(t, 1, r.Len())
		assert.Equal(t, alice.UserID, r.Owner().ID)
	})
	assert.NotNil(t, h.ResolveSession(alice.SessionToken))
	assert.Nil(t, h.ResolveSession(bob.SessionToken))
	assert.Nil(t, h.ResolveSession(carol.SessionToken))
}

func TestDestroyRoomTearsDownEverything(t *testing.T) {
	h := newTestHub(t)
	alice, _ := h.CreateRoom("movie-night", "Movie Night", "Alice", "")
	aliceConn, _ := openConn(t, h, alice.SessionToken)

	bob, _ := h.JoinRoom("movie-night", "Bob", "")
	bobConn, _ := openConn(t, h, bob.SessionToken)
	nextFrame(t, aliceConn)

	dispatchRaw(h, aliceConn, `{"type":"destroyRoom","body":{}}`)

	assert.True(t, aliceConn.serverClosed.Load())
	assert.True(t, bobConn.serverClosed.Load())
	assert.Nil(t, h.ResolveSession(alice.SessionToken))
	assert.Nil(t, h.ResolveSession(bob.SessionToken))

	h.Do(func() {
		assert.Nil(t, h.registry.Get("movie-night"))
	})
}

func TestOpenForVanishedSessionIsRefused(t *testing.T) {
	h := newTestHub(t)
	alice, _ := h.CreateRoom("movie-night", "Movie Night", "Alice", "")

	var c *connection
	h.Do(func() {
		u := h.sessions.Get(alice.SessionToken)
		c = newConnection(h, nil, u)

		// the reaper or a destroy can win the race against the upgrade
		h.sessions.Destroy(alice.SessionToken)
		h.registry.Delete("movie-night")

		h.handleOpen(c)
	})

	assert.True(t, c.serverClosed.Load())
	assertNoFrame(t, c)
}
