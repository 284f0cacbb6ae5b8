package thrift

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func newPair() (*TCompactProtocol, *TMemoryBuffer) {
	buf := NewTMemoryBuffer()
	return NewTCompactProtocol(buf), buf
}

// S1: writeMessageBegin("Ping", CALL, 42); writeMessageEnd (empty body).
func TestScenarioS1MessageEnvelope(t *testing.T) {
	p, buf := newPair()
	require.NoError(t, p.WriteMessageBegin(ctx, "Ping", CALL, 42))
	require.NoError(t, p.WriteMessageEnd(ctx))
	assert.Equal(t, []byte{0x82, 0x21, 0x2A, 0x04, 0x50, 0x69, 0x6E, 0x67}, buf.Bytes())
}

func TestScenarioS1RoundTrip(t *testing.T) {
	p, _ := newPair()
	require.NoError(t, p.WriteMessageBegin(ctx, "Ping", CALL, 42))
	require.NoError(t, p.WriteMessageEnd(ctx))

	name, typeId, seqid, err := p.ReadMessageBegin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ping", name)
	assert.Equal(t, CALL, typeId)
	assert.EqualValues(t, 42, seqid)
	require.NoError(t, p.ReadMessageEnd(ctx))
}

// S4: struct with field id=3 I32=7, field id=7 I32=-1.
func TestScenarioS4DeltaFieldHeaders(t *testing.T) {
	p, buf := newPair()
	require.NoError(t, p.WriteStructBegin(ctx, "S"))
	require.NoError(t, p.WriteFieldBegin(ctx, "a", I32, 3))
	require.NoError(t, p.WriteI32(ctx, 7))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteFieldBegin(ctx, "b", I32, 7))
	require.NoError(t, p.WriteI32(ctx, -1))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	assert.Equal(t, []byte{0x35, 0x0E, 0x45, 0x01, 0x00}, buf.Bytes())
}

func TestScenarioS4RoundTrip(t *testing.T) {
	p, _ := newPair()
	require.NoError(t, p.WriteStructBegin(ctx, "S"))
	require.NoError(t, p.WriteFieldBegin(ctx, "a", I32, 3))
	require.NoError(t, p.WriteI32(ctx, 7))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteFieldBegin(ctx, "b", I32, 7))
	require.NoError(t, p.WriteI32(ctx, -1))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	_, err := p.ReadStructBegin(ctx)
	require.NoError(t, err)

	_, typeId, id, err := p.ReadFieldBegin(ctx)
	require.NoError(t, err)
	assert.Equal(t, I32, typeId)
	assert.EqualValues(t, 3, id)
	v, err := p.ReadI32(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 7, v)
	require.NoError(t, p.ReadFieldEnd(ctx))

	_, typeId, id, err = p.ReadFieldBegin(ctx)
	require.NoError(t, err)
	assert.Equal(t, I32, typeId)
	assert.EqualValues(t, 7, id)
	v, err = p.ReadI32(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, -1, v)
	require.NoError(t, p.ReadFieldEnd(ctx))

	_, typeId, _, err = p.ReadFieldBegin(ctx)
	require.NoError(t, err)
	assert.Equal(t, STOP, typeId)
	require.NoError(t, p.ReadStructEnd(ctx))
}

// S5: struct with single BOOL field id=1 value=true.
func TestScenarioS5BoolFusion(t *testing.T) {
	p, buf := newPair()
	require.NoError(t, p.WriteStructBegin(ctx, "S"))
	require.NoError(t, p.WriteFieldBegin(ctx, "flag", BOOL, 1))
	require.NoError(t, p.WriteBool(ctx, true))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	assert.Equal(t, []byte{0x11, 0x00}, buf.Bytes())
}

func TestScenarioS5BoolRoundTrip(t *testing.T) {
	p, _ := newPair()
	require.NoError(t, p.WriteStructBegin(ctx, "S"))
	require.NoError(t, p.WriteFieldBegin(ctx, "flag", BOOL, 1))
	require.NoError(t, p.WriteBool(ctx, true))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	_, err := p.ReadStructBegin(ctx)
	require.NoError(t, err)
	_, typeId, id, err := p.ReadFieldBegin(ctx)
	require.NoError(t, err)
	assert.Equal(t, BOOL, typeId)
	assert.EqualValues(t, 1, id)
	v, err := p.ReadBool(ctx)
	require.NoError(t, err)
	assert.True(t, v)
	require.NoError(t, p.ReadFieldEnd(ctx))
	_, typeId, _, err = p.ReadFieldBegin(ctx)
	require.NoError(t, err)
	assert.Equal(t, STOP, typeId)
	require.NoError(t, p.ReadStructEnd(ctx))
}

// S6: list of three I16 values [1,2,3] inside field id=1.
func TestScenarioS6ListInField(t *testing.T) {
	p, buf := newPair()
	require.NoError(t, p.WriteStructBegin(ctx, "S"))
	require.NoError(t, p.WriteFieldBegin(ctx, "xs", LIST, 1))
	require.NoError(t, p.WriteListBegin(ctx, I16, 3))
	for _, v := range []int16{1, 2, 3} {
		require.NoError(t, p.WriteI16(ctx, v))
	}
	require.NoError(t, p.WriteListEnd(ctx))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	assert.Equal(t, []byte{0x19, 0x34, 0x02, 0x04, 0x06, 0x00}, buf.Bytes())
}

func TestScenarioS6RoundTrip(t *testing.T) {
	p, _ := newPair()
	require.NoError(t, p.WriteStructBegin(ctx, "S"))
	require.NoError(t, p.WriteFieldBegin(ctx, "xs", LIST, 1))
	require.NoError(t, p.WriteListBegin(ctx, I16, 3))
	for _, v := range []int16{1, 2, 3} {
		require.NoError(t, p.WriteI16(ctx, v))
	}
	require.NoError(t, p.WriteListEnd(ctx))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	_, err := p.ReadStructBegin(ctx)
	require.NoError(t, err)
	_, typeId, id, err := p.ReadFieldBegin(ctx)
	require.NoError(t, err)
	assert.Equal(t, LIST, typeId)
	assert.EqualValues(t, 1, id)

	elemType, size, err := p.ReadListBegin(ctx)
	require.NoError(t, err)
	assert.Equal(t, I16, elemType)
	assert.EqualValues(t, 3, size)
	var got []int16
	for i := int32(0); i < size; i++ {
		v, err := p.ReadI16(ctx)
		require.NoError(t, err)
		got = append(got, v)
	}
	require.NoError(t, p.ReadListEnd(ctx))
	assert.Equal(t, []int16{1, 2, 3}, got)

	require.NoError(t, p.ReadFieldEnd(ctx))
	_, typeId, _, err = p.ReadFieldBegin(ctx)
	require.NoError(t, err)
	assert.Equal(t, STOP, typeId)
	require.NoError(t, p.ReadStructEnd(ctx))
}

// Invariant 7: empty map serializes to exactly one 0x00 byte.
func TestInvariantEmptyMap(t *testing.T) {
	p, buf := newPair()
	require.NoError(t, p.WriteStructBegin(ctx, "S"))
	require.NoError(t, p.WriteFieldBegin(ctx, "m", MAP, 1))
	require.NoError(t, p.WriteMapBegin(ctx, STRING, I32, 0))
	require.NoError(t, p.WriteMapEnd(ctx))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	// field header 0x1B (delta 1, MAP tag 0x0B), then map size byte 0x00, then STOP.
	assert.Equal(t, []byte{0x1B, 0x00, 0x00}, buf.Bytes())
}

// Invariant 8: a list/set of n<=14 elements prepends exactly one header byte.
func TestInvariantSmallListOneHeaderByte(t *testing.T) {
	p, buf := newPair()
	require.NoError(t, p.WriteStructBegin(ctx, "S"))
	require.NoError(t, p.WriteFieldBegin(ctx, "xs", LIST, 1))
	require.NoError(t, p.WriteListBegin(ctx, BYTE, 14))
	for i := 0; i < 14; i++ {
		require.NoError(t, p.WriteByte(ctx, int8(i)))
	}
	require.NoError(t, p.WriteListEnd(ctx))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	// field header (1 byte) + list header (1 byte) + 14 elements + STOP.
	assert.Len(t, buf.Bytes(), 1+1+14+1)
}

// Invariant 5: after a nested struct terminates, the outer struct's
// last_field_id is restored to its value before the inner struct began.
func TestInvariantLastFieldIdRestoration(t *testing.T) {
	p, buf := newPair()
	require.NoError(t, p.WriteStructBegin(ctx, "Outer"))
	require.NoError(t, p.WriteFieldBegin(ctx, "a", I32, 5))
	require.NoError(t, p.WriteI32(ctx, 1))
	require.NoError(t, p.WriteFieldEnd(ctx))

	require.NoError(t, p.WriteFieldBegin(ctx, "inner", STRUCT, 6))
	require.NoError(t, p.WriteStructBegin(ctx, "Inner"))
	require.NoError(t, p.WriteFieldBegin(ctx, "x", I32, 1))
	require.NoError(t, p.WriteI32(ctx, 9))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))
	require.NoError(t, p.WriteFieldEnd(ctx))

	// outer last_field_id was 6 before the inner struct began; the next
	// outer field id=7 must delta-compress against 6, not against the
	// inner struct's last id of 1.
	require.NoError(t, p.WriteFieldBegin(ctx, "b", I32, 7))
	require.NoError(t, p.WriteI32(ctx, 2))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	// Decode and check the final outer field reads back as id 7, its delta
	// applied against the restored outer id 6.
	p2, _ := newPair()
	_, err := p2.trans.Write(buf.Bytes())
	require.NoError(t, err)
	_, err = p2.ReadStructBegin(ctx)
	require.NoError(t, err)
	var lastId int16
	for {
		_, typeId, id, err := p2.ReadFieldBegin(ctx)
		require.NoError(t, err)
		if typeId == STOP {
			break
		}
		if typeId == STRUCT {
			_, err := p2.ReadStructBegin(ctx)
			require.NoError(t, err)
			for {
				_, ft, _, err := p2.ReadFieldBegin(ctx)
				require.NoError(t, err)
				if ft == STOP {
					break
				}
				_, err = p2.ReadI32(ctx)
				require.NoError(t, err)
				require.NoError(t, p2.ReadFieldEnd(ctx))
			}
			require.NoError(t, p2.ReadStructEnd(ctx))
		} else {
			_, err := p2.ReadI32(ctx)
			require.NoError(t, err)
		}
		require.NoError(t, p2.ReadFieldEnd(ctx))
		lastId = id
	}
	assert.EqualValues(t, 7, lastId)
}

// Invariant 4: delta compression equivalence — natural vs scrambled ids
// decode to the same struct; the scrambled encoding is byte-wise >= in size.
func TestInvariantDeltaCompressionEquivalence(t *testing.T) {
	writeStruct := func(ids []int16) []byte {
		p, buf := newPair()
		require.NoError(t, p.WriteStructBegin(ctx, "S"))
		for _, id := range ids {
			require.NoError(t, p.WriteFieldBegin(ctx, "f", I32, id))
			require.NoError(t, p.WriteI32(ctx, int32(id)))
			require.NoError(t, p.WriteFieldEnd(ctx))
		}
		require.NoError(t, p.WriteStructEnd(ctx))
		return buf.Bytes()
	}

	natural := writeStruct([]int16{1, 2, 3, 4})
	scrambled := writeStruct([]int16{4, 1, 3, 2})

	decode := func(raw []byte) map[int16]int32 {
		p, _ := newPair()
		_, err := p.trans.Write(raw)
		require.NoError(t, err)
		_, err = p.ReadStructBegin(ctx)
		require.NoError(t, err)
		out := map[int16]int32{}
		for {
			_, typeId, id, err := p.ReadFieldBegin(ctx)
			require.NoError(t, err)
			if typeId == STOP {
				break
			}
			v, err := p.ReadI32(ctx)
			require.NoError(t, err)
			out[id] = v
			require.NoError(t, p.ReadFieldEnd(ctx))
		}
		require.NoError(t, p.ReadStructEnd(ctx))
		return out
	}

	assert.Equal(t, decode(natural), decode(scrambled))
	assert.GreaterOrEqual(t, len(scrambled), len(natural))
}

func TestWriteFieldBeginRejectsOutOfSequenceCalls(t *testing.T) {
	p, _ := newPair()
	err := p.WriteFieldBegin(ctx, "a", I32, 1)
	require.Error(t, err)
	pe, ok := err.(*TProtocolException)
	require.True(t, ok)
	assert.Equal(t, INVALID_STATE, pe.TypeId())
}

func TestReadMessageBeginRejectsBadProtocolId(t *testing.T) {
	buf := NewTMemoryBuffer()
	buf.Write([]byte{0x00, 0x21})
	p := NewTCompactProtocol(buf)
	_, _, _, err := p.ReadMessageBegin(ctx)
	require.Error(t, err)
	pe, ok := err.(*TProtocolException)
	require.True(t, ok)
	assert.Equal(t, BAD_PROTOCOL_ID, pe.TypeId())
}

func TestReadMessageBeginRejectsBadVersion(t *testing.T) {
	buf := NewTMemoryBuffer()
	buf.Write([]byte{0x82, 0x02})
	p := NewTCompactProtocol(buf)
	_, _, _, err := p.ReadMessageBegin(ctx)
	require.Error(t, err)
	pe, ok := err.(*TProtocolException)
	require.True(t, ok)
	assert.Equal(t, BAD_VERSION, pe.TypeId())
}

func TestReadListBeginRejectsImplausibleElementCount(t *testing.T) {
	buf := NewTMemoryBuffer()
	w := NewTCompactProtocol(buf)
	require.NoError(t, w.WriteStructBegin(ctx, "S"))
	require.NoError(t, w.WriteFieldBegin(ctx, "xs", LIST, 1))
	require.NoError(t, w.WriteListBegin(ctx, DOUBLE, 1000))

	r := NewTCompactProtocolConf(buf, &TConfiguration{MaxMessageSize: 10})
	_, err := r.ReadStructBegin(ctx)
	require.NoError(t, err)
	_, _, _, err = r.ReadFieldBegin(ctx)
	require.NoError(t, err)
	_, _, err = r.ReadListBegin(ctx)
	require.Error(t, err)
	pe, ok := err.(*TProtocolException)
	require.True(t, ok)
	assert.Equal(t, SIZE_LIMIT, pe.TypeId())
}

func TestContainerOfStructsNestsCorrectly(t *testing.T) {
	p, _ := newPair()
	require.NoError(t, p.WriteStructBegin(ctx, "Outer"))
	require.NoError(t, p.WriteFieldBegin(ctx, "items", LIST, 1))
	require.NoError(t, p.WriteListBegin(ctx, STRUCT, 2))
	for i := 0; i < 2; i++ {
		require.NoError(t, p.WriteStructBegin(ctx, "Item"))
		require.NoError(t, p.WriteFieldBegin(ctx, "v", I32, 1))
		require.NoError(t, p.WriteI32(ctx, int32(i)))
		require.NoError(t, p.WriteFieldEnd(ctx))
		require.NoError(t, p.WriteStructEnd(ctx))
	}
	require.NoError(t, p.WriteListEnd(ctx))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	assert.Equal(t, phaseClear, p.phase)
	assert.Empty(t, p.structStack)
	assert.Empty(t, p.containerStack)
}

func TestDoubleLittleEndian(t *testing.T) {
	p, buf := newPair()
	require.NoError(t, p.WriteStructBegin(ctx, "S"))
	require.NoError(t, p.WriteFieldBegin(ctx, "d", DOUBLE, 1))
	require.NoError(t, p.WriteDouble(ctx, 1.0))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	// IEEE-754 1.0 little-endian: 00 00 00 00 00 00 F0 3F.
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF0, 0x3F}, buf.Bytes()[1:9])
}
