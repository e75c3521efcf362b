package websocket

import (
	"testing"

	"github.com/gorilla/websocket"
)

func TestClient_NewClient(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, nil, "192.0.2.1:1234")

	if client.hub != hub {
		t.Error("expected client to hold the hub")
	}
	if client.send == nil {
		t.Error("expected send channel to be initialized")
	}
	if cap(client.send) != 256 {
		t.Errorf("expected send buffer of 256, got %d", cap(client.send))
	}
	if client.remoteAddr != "192.0.2.1:1234" {
		t.Errorf("unexpected remote addr %q", client.remoteAddr)
	}
}

func TestClient_WriteAfterCloseReturnsErrCloseSent(t *testing.T) {
	client := NewClient(NewHub(), nil, "192.0.2.1:1234")
	client.closed.Store(true)

	err := client.writeMessage(websocket.TextMessage, []byte("late"))
	if err != websocket.ErrCloseSent {
		t.Errorf("expected ErrCloseSent, got %v", err)
	}
}
