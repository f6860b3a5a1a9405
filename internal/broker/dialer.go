package broker

import (
	"github.com/gorilla/websocket"
)

// Conn is the slice of a WebSocket connection the manager actually uses.
// *websocket.Conn satisfies it; tests substitute scripted connections.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens one real-time connection to a broker endpoint.
type Dialer interface {
	Dial(url string) (Conn, error)
}

// gorillaDialer is the production dialer.
type gorillaDialer struct{}

func (gorillaDialer) Dial(url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
