package thrift

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramedTransportRoundTrip(t *testing.T) {
	mem := NewTMemoryBuffer()
	writer := NewTFramedTransport(mem)
	_, err := writer.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, writer.Flush(context.Background()))

	// Frame is a 4-byte big-endian length prefix followed by the payload.
	raw := mem.Bytes()
	require.Len(t, raw, 4+5)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x05}, raw[:4])

	reader := NewTFramedTransport(mem)
	out := make([]byte, 5)
	n, err := reader.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(out))
}

func TestFramedTransportRejectsOversizedFrame(t *testing.T) {
	mem := NewTMemoryBuffer()
	cfg := &TConfiguration{MaxFrameSize: 4}
	writer := NewTFramedTransportConf(mem, cfg)
	_, err := writer.Write([]byte("toolong"))
	require.NoError(t, err)
	err = writer.Flush(context.Background())
	require.Error(t, err)
}

// timeoutErr implements net.Error's Timeout() so isTimeoutError recognizes
// it the way it would a real deadline-exceeded error from a net.Conn.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type timeoutTransport struct{ TTransport }

func (timeoutTransport) Read(p []byte) (int, error) { return 0, timeoutErr{} }

func TestFramedTransportClassifiesTimeout(t *testing.T) {
	reader := NewTFramedTransport(timeoutTransport{})
	_, err := reader.Read(make([]byte, 1))
	require.Error(t, err)
	te, ok := err.(*TTransportException)
	require.True(t, ok)
	assert.Equal(t, TIMED_OUT, te.TypeId())
}

func TestFramedTransportWithCompactProtocol(t *testing.T) {
	mem := NewTMemoryBuffer()
	framed := NewTFramedTransport(mem)
	p := NewTCompactProtocol(framed)

	ctx := context.Background()
	require.NoError(t, p.WriteMessageBegin(ctx, "Ping", CALL, 1))
	require.NoError(t, p.WriteMessageEnd(ctx))
	require.NoError(t, framed.Flush(ctx))

	reader := NewTFramedTransport(mem)
	p2 := NewTCompactProtocol(reader)
	name, typeId, seqid, err := p2.ReadMessageBegin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ping", name)
	assert.Equal(t, CALL, typeId)
	assert.EqualValues(t, 1, seqid)
}
