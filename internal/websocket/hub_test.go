package websocket

import (
	"encoding/json"
	"testing"
)

func testClient() *Client {
	return &Client{send: make(chan []byte, 16)}
}

func TestBroadcastEntryReachesOwnUserOnly(t *testing.T) {
	hub := NewHub()
	mine := testClient()
	theirs := testClient()
	hub.Register("user-1", mine)
	hub.Register("user-2", theirs)

	hub.BroadcastEntry("user-1", EntryUpdate{Kind: "Sale", EntryID: "s1", TransactionID: "t1"})

	select {
	case payload := <-mine.send:
		var update EntryUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if update.EntryID != "s1" || update.Kind != "Sale" {
			t.Fatalf("update = %+v", update)
		}
	default:
		t.Fatalf("registered client received nothing")
	}
	select {
	case <-theirs.send:
		t.Fatalf("other user's client should receive nothing")
	default:
	}
}

func TestBroadcastEntrySkipsFullClients(t *testing.T) {
	hub := NewHub()
	full := &Client{send: make(chan []byte)}
	hub.Register("user-1", full)
	// Must not block even though nobody is draining the channel.
	hub.BroadcastEntry("user-1", EntryUpdate{EntryID: "s1"})
}

func TestUnregister(t *testing.T) {
	hub := NewHub()
	client := testClient()
	hub.Register("user-1", client)
	hub.Unregister("user-1", client)
	hub.BroadcastEntry("user-1", EntryUpdate{EntryID: "s1"})
	select {
	case <-client.send:
		t.Fatalf("unregistered client should receive nothing")
	default:
	}
}
