package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain reads every queued message off a client's send buffer.
func drain(t *testing.T, c *Client) []Message {
	t.Helper()

	var msgs []Message
	for {
		select {
		case data := <-c.send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func TestEmitToOthersExcludesSender(t *testing.T) {
	hub := NewHub()
	sender := NewClient(nil)
	peerA := NewClient(nil)
	peerB := NewClient(nil)

	hub.Join(sender, "s1")
	hub.Join(peerA, "s1")
	hub.Join(peerB, "s1")

	require.NoError(t, hub.EmitToOthers("s1", sender, &Message{Event: EventCodeUpdate, Code: "x"}))

	assert.Empty(t, drain(t, sender))
	require.Len(t, drain(t, peerA), 1)
	require.Len(t, drain(t, peerB), 1)
}

func TestEmitToOthersScopedToGroup(t *testing.T) {
	hub := NewHub()
	sender := NewClient(nil)
	other := NewClient(nil)

	hub.Join(sender, "s1")
	hub.Join(other, "s2")

	require.NoError(t, hub.EmitToOthers("s1", sender, &Message{Event: EventCodeUpdate, Code: "x"}))

	assert.Empty(t, drain(t, other))
}

func TestJoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)

	hub.Join(client, "s1")
	hub.Join(client, "s1")

	assert.Equal(t, 1, hub.MemberCount("s1"))
	assert.Equal(t, 1, hub.GroupCount())
}

func TestJoinMovesBetweenSessions(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)

	hub.Join(client, "s1")
	hub.Join(client, "s2")

	assert.Equal(t, 0, hub.MemberCount("s1"))
	assert.Equal(t, 1, hub.MemberCount("s2"))
}

func TestLeaveRemovesMembership(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)
	peer := NewClient(nil)

	hub.Join(client, "s1")
	hub.Join(peer, "s1")
	hub.Leave(client)

	assert.Equal(t, 1, hub.MemberCount("s1"))

	// The departed client receives nothing
	require.NoError(t, hub.EmitToOthers("s1", peer, &Message{Event: EventCodeUpdate}))
	assert.Empty(t, drain(t, client))
}

func TestLeaveLastMemberDropsGroup(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)

	hub.Join(client, "s1")
	hub.Leave(client)

	assert.Equal(t, 0, hub.GroupCount())
}

func TestLeaveWithoutJoinIsSafe(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() { hub.Leave(NewClient(nil)) })
}

func TestSendPreservesOrder(t *testing.T) {
	hub := NewHub()
	sender := NewClient(nil)
	peer := NewClient(nil)

	hub.Join(sender, "s1")
	hub.Join(peer, "s1")

	for _, code := range []string{"a", "ab", "abc"} {
		require.NoError(t, hub.EmitToOthers("s1", sender, &Message{Event: EventCodeUpdate, Code: code}))
	}

	msgs := drain(t, peer)
	require.Len(t, msgs, 3)
	assert.Equal(t, "a", msgs[0].Code)
	assert.Equal(t, "ab", msgs[1].Code)
	assert.Equal(t, "abc", msgs[2].Code)
}

func TestSlowClientDropped(t *testing.T) {
	hub := NewHub()
	sender := NewClient(nil)
	slow := NewClient(nil)

	hub.Join(sender, "s1")
	hub.Join(slow, "s1")

	// Overflow the outbound buffer; the slow client gets closed instead
	// of blocking the group.
	for i := 0; i <= sendBuffer; i++ {
		hub.EmitToOthers("s1", sender, &Message{Event: EventCodeUpdate, Code: "x"})
	}

	slow.mu.Lock()
	closed := slow.closed
	slow.mu.Unlock()
	assert.True(t, closed)
}
