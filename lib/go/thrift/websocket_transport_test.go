package thrift

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketTransportRoundTrip(t *testing.T) {
	var upgrader websocket.Upgrader
	received := make(chan []byte, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		received <- data
		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, data))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	transport := NewTWebSocketTransport(conn)
	ctx := context.Background()
	_, err = transport.Write([]byte("ping"))
	require.NoError(t, err)
	require.NoError(t, transport.Flush(ctx))

	assert.Equal(t, []byte("ping"), <-received)

	out := make([]byte, 4)
	n, err := transport.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "ping", string(out))
}
