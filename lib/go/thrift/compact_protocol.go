/*
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements. See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership. The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License. You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package thrift

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	COMPACT_PROTOCOL_ID       = 0x82
	COMPACT_VERSION           = 1
	COMPACT_VERSION_MASK      = 0x1f
	COMPACT_TYPE_MASK         = 0xe0
	COMPACT_TYPE_SHIFT_AMOUNT = 5
)

// protoPhase is the tagged variant Design Notes §9 calls for in place of
// bare integer constants: every method that touches it switches on it and
// sends any phase it does not accept to a default branch that returns
// INVALID_STATE, so an illegal transition is a typed error, not a
// silently-accepted integer.
type protoPhase int

const (
	phaseClear protoPhase = iota
	phaseWriteStruct
	phaseWriteValue
	phaseWriteBool
	phaseWriteContainer
	phaseReadStruct
	phaseReadValue
	phaseReadContainer
	phaseReadBoolTrue
	phaseReadBoolFalse
)

type structFrame struct {
	phase       protoPhase
	lastFieldId int16
}

// TCompactProtocol implements the Thrift compact binary protocol: varint
// and zig-zag integer encoding, delta-compressed field ids, and boolean
// values fused into their own field header. One instance wraps one
// transport and is not safe for concurrent use; see SPEC_FULL.md §5.
type TCompactProtocol struct {
	origTransport TTransport
	trans         TRichTransport
	cfg           *TConfiguration

	phase              protoPhase
	lastFieldId        int16
	pendingBoolFieldId int16
	structStack        []structFrame
	containerStack     []protoPhase

	buffer [binary.MaxVarintLen64]byte
}

type TCompactProtocolFactory struct {
	cfg *TConfiguration
}

func NewTCompactProtocolFactory() *TCompactProtocolFactory {
	return &TCompactProtocolFactory{}
}

func NewTCompactProtocolFactoryConf(cfg *TConfiguration) *TCompactProtocolFactory {
	return &TCompactProtocolFactory{cfg: cfg}
}

func (f *TCompactProtocolFactory) GetProtocol(trans TTransport) TProtocol {
	return NewTCompactProtocolConf(trans, f.cfg)
}

func (f *TCompactProtocolFactory) SetTConfiguration(cfg *TConfiguration) {
	f.cfg = cfg
}

func NewTCompactProtocol(trans TTransport) *TCompactProtocol {
	return NewTCompactProtocolConf(trans, nil)
}

func NewTCompactProtocolConf(trans TTransport, cfg *TConfiguration) *TCompactProtocol {
	p := &TCompactProtocol{origTransport: trans, cfg: cfg}
	if rich, ok := trans.(TRichTransport); ok {
		p.trans = rich
	} else {
		p.trans = NewTRichTransport(trans)
	}
	PropagateTConfiguration(trans, cfg)
	return p
}

func (p *TCompactProtocol) SetTConfiguration(cfg *TConfiguration) {
	p.cfg = cfg
	PropagateTConfiguration(p.origTransport, cfg)
}

func (p *TCompactProtocol) Transport() TTransport { return p.origTransport }

func invalidState(op string) error {
	return NewTProtocolExceptionWithType(INVALID_STATE, fmt.Errorf("compact protocol: %s called out of sequence", op))
}

// normalizeAfterValue is the single rule every value-closing operation
// (a scalar write/read, a container End, a nested struct End) applies to
// whatever phase was saved when the value was entered: a value nested
// directly in a struct field hands control back to WRITE_STRUCT/
// READ_STRUCT, while a value nested inside a container leaves the
// container phase untouched so the next element can be written or read.
func normalizeAfterValue(saved protoPhase) protoPhase {
	switch saved {
	case phaseWriteValue:
		return phaseWriteStruct
	case phaseReadValue:
		return phaseReadStruct
	default:
		return saved
	}
}

func (p *TCompactProtocol) enterWriteValue(op string) (protoPhase, error) {
	switch p.phase {
	case phaseWriteValue, phaseWriteContainer:
		return p.phase, nil
	default:
		return 0, invalidState(op)
	}
}

func (p *TCompactProtocol) exitWriteValue(saved protoPhase) {
	p.phase = normalizeAfterValue(saved)
}

func (p *TCompactProtocol) enterReadValue(op string) (protoPhase, error) {
	switch p.phase {
	case phaseReadValue, phaseReadContainer:
		return p.phase, nil
	default:
		return 0, invalidState(op)
	}
}

func (p *TCompactProtocol) exitReadValue(saved protoPhase) {
	p.phase = normalizeAfterValue(saved)
}

func (p *TCompactProtocol) enterContainer(op string) (protoPhase, error) {
	switch p.phase {
	case phaseWriteValue, phaseWriteContainer:
		return p.phase, nil
	default:
		return 0, invalidState(op)
	}
}

func (p *TCompactProtocol) enterReadContainer(op string) (protoPhase, error) {
	switch p.phase {
	case phaseReadValue, phaseReadContainer:
		return p.phase, nil
	default:
		return 0, invalidState(op)
	}
}

func (p *TCompactProtocol) exitContainer(stack *[]protoPhase) error {
	n := len(*stack)
	if n == 0 {
		return invalidState("containerEnd")
	}
	saved := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	p.phase = normalizeAfterValue(saved)
	return nil
}

// --- raw byte/varint primitives -------------------------------------------

func (p *TCompactProtocol) writeByteDirect(b byte) error {
	return p.trans.WriteByte(b)
}

func (p *TCompactProtocol) writeVarint64(n uint64) error {
	buf := encodeUvarint64(p.buffer[:0], n)
	_, err := p.trans.Write(buf)
	return err
}

func (p *TCompactProtocol) readVarint64() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := p.trans.ReadByte()
		if err != nil {
			return 0, NewTProtocolException(err)
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 70 {
			return 0, NewTProtocolExceptionWithType(MALFORMED_VARINT, fmt.Errorf("compact protocol: varint longer than 10 bytes"))
		}
	}
}

func (p *TCompactProtocol) readVarint32() (int32, error) {
	v, err := p.readVarint64()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, NewTProtocolExceptionWithType(MALFORMED_VARINT, fmt.Errorf("compact protocol: varint exceeds 32 bits"))
	}
	return int32(uint32(v)), nil
}

// writeFieldId16 writes the zig-zag varint of a field or element id.
// Sign-extending the 16-bit id to 32 bits before zig-zagging produces the
// same bytes a true 16-bit zig-zag would for every in-range value, which is
// what the wire format actually expects (see DESIGN.md).
func (p *TCompactProtocol) writeFieldId16(id int16) error {
	return p.writeVarint64(int32ToZigzag(int32(id)))
}

func (p *TCompactProtocol) readFieldId16() (int16, error) {
	v, err := p.readVarint32()
	if err != nil {
		return 0, err
	}
	return int16(zigzagToInt32(uint64(uint32(v)))), nil
}

// --- field header ----------------------------------------------------------

func (p *TCompactProtocol) writeFieldBeginInternal(ct tCompactType, id int16) error {
	delta := int32(id) - int32(p.lastFieldId)
	if p.lastFieldId >= 0 && delta > 0 && delta <= 15 {
		if err := p.writeByteDirect(byte(delta<<4) | byte(ct)); err != nil {
			return err
		}
	} else {
		if err := p.writeByteDirect(byte(ct)); err != nil {
			return err
		}
		if err := p.writeFieldId16(id); err != nil {
			return err
		}
	}
	p.lastFieldId = id
	return nil
}

// --- message envelope --------------------------------------------------

func (p *TCompactProtocol) WriteMessageBegin(ctx context.Context, name string, typeId TMessageType, seqid int32) error {
	if p.phase != phaseClear {
		return invalidState("writeMessageBegin")
	}
	if err := p.writeByteDirect(COMPACT_PROTOCOL_ID); err != nil {
		return err
	}
	if err := p.writeByteDirect(COMPACT_VERSION | (byte(typeId) << COMPACT_TYPE_SHIFT_AMOUNT)); err != nil {
		return err
	}
	if err := p.writeVarint64(uint64(uint32(seqid))); err != nil {
		return err
	}
	if err := p.writeBinaryUnchecked([]byte(name)); err != nil {
		return err
	}
	p.phase = phaseWriteStruct
	return nil
}

func (p *TCompactProtocol) WriteMessageEnd(ctx context.Context) error {
	if p.phase != phaseWriteStruct || len(p.structStack) != 0 {
		return invalidState("writeMessageEnd")
	}
	p.phase = phaseClear
	return nil
}

func (p *TCompactProtocol) ReadMessageBegin(ctx context.Context) (name string, typeId TMessageType, seqid int32, err error) {
	if p.phase != phaseClear {
		err = invalidState("readMessageBegin")
		return
	}
	protocolId, rerr := p.trans.ReadByte()
	if rerr != nil {
		err = NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, rerr)
		return
	}
	if protocolId != COMPACT_PROTOCOL_ID {
		err = NewTProtocolExceptionWithType(BAD_PROTOCOL_ID, fmt.Errorf("compact protocol: bad protocol id 0x%x", protocolId))
		return
	}
	verType, rerr := p.trans.ReadByte()
	if rerr != nil {
		err = NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, rerr)
		return
	}
	version := verType & COMPACT_VERSION_MASK
	if version != COMPACT_VERSION {
		err = NewTProtocolExceptionWithType(BAD_VERSION, fmt.Errorf("compact protocol: bad version %d", version))
		return
	}
	typeId = TMessageType((verType >> COMPACT_TYPE_SHIFT_AMOUNT) & 0x07)
	useqid, rerr := p.readVarint64()
	if rerr != nil {
		err = rerr
		return
	}
	seqid = int32(uint32(useqid))
	name, err = p.readStringRaw()
	if err != nil {
		return
	}
	p.phase = phaseReadStruct
	return
}

func (p *TCompactProtocol) ReadMessageEnd(ctx context.Context) error {
	if p.phase != phaseReadStruct || len(p.structStack) != 0 {
		return invalidState("readMessageEnd")
	}
	p.phase = phaseClear
	return nil
}

// --- struct framing ------------------------------------------------------

func (p *TCompactProtocol) WriteStructBegin(ctx context.Context, name string) error {
	switch p.phase {
	case phaseClear, phaseWriteStruct, phaseWriteContainer, phaseWriteValue:
	default:
		return invalidState("writeStructBegin")
	}
	p.structStack = append(p.structStack, structFrame{phase: p.phase, lastFieldId: p.lastFieldId})
	p.phase = phaseWriteStruct
	p.lastFieldId = 0
	return nil
}

func (p *TCompactProtocol) WriteStructEnd(ctx context.Context) error {
	if p.phase != phaseWriteStruct {
		return invalidState("writeStructEnd")
	}
	if err := p.writeByteDirect(0x00); err != nil {
		return err
	}
	return p.popStructFrame()
}

func (p *TCompactProtocol) ReadStructBegin(ctx context.Context) (name string, err error) {
	switch p.phase {
	case phaseClear, phaseReadStruct, phaseReadContainer, phaseReadValue:
	default:
		return "", invalidState("readStructBegin")
	}
	p.structStack = append(p.structStack, structFrame{phase: p.phase, lastFieldId: p.lastFieldId})
	p.phase = phaseReadStruct
	p.lastFieldId = 0
	return "", nil
}

func (p *TCompactProtocol) ReadStructEnd(ctx context.Context) error {
	if p.phase != phaseReadStruct {
		return invalidState("readStructEnd")
	}
	return p.popStructFrame()
}

func (p *TCompactProtocol) popStructFrame() error {
	n := len(p.structStack)
	if n == 0 {
		return invalidState("structEnd")
	}
	top := p.structStack[n-1]
	p.structStack = p.structStack[:n-1]
	p.phase = normalizeAfterValue(top.phase)
	p.lastFieldId = top.lastFieldId
	return nil
}

// --- field framing ---------------------------------------------------------

func (p *TCompactProtocol) WriteFieldBegin(ctx context.Context, name string, typeId TType, id int16) error {
	if p.phase != phaseWriteStruct {
		return invalidState("writeFieldBegin")
	}
	if typeId == BOOL {
		p.phase = phaseWriteBool
		p.pendingBoolFieldId = id
		return nil
	}
	ct, err := getCompactType(typeId)
	if err != nil {
		return err
	}
	if err := p.writeFieldBeginInternal(ct, id); err != nil {
		return err
	}
	p.phase = phaseWriteValue
	return nil
}

func (p *TCompactProtocol) WriteFieldEnd(ctx context.Context) error {
	if p.phase != phaseWriteStruct {
		return invalidState("writeFieldEnd")
	}
	return nil
}

func (p *TCompactProtocol) WriteFieldStop(ctx context.Context) error {
	return p.writeByteDirect(0x00)
}

func (p *TCompactProtocol) ReadFieldBegin(ctx context.Context) (name string, typeId TType, id int16, err error) {
	if p.phase != phaseReadStruct {
		err = invalidState("readFieldBegin")
		return
	}
	b, rerr := p.trans.ReadByte()
	if rerr != nil {
		err = NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, rerr)
		return
	}
	if b&0x0f == 0 {
		typeId = STOP
		return
	}
	ct := tCompactType(b & 0x0f)
	delta := int16(b >> 4)
	if delta == 0 {
		fid, ferr := p.readFieldId16()
		if ferr != nil {
			err = ferr
			return
		}
		id = fid
	} else {
		id = p.lastFieldId + delta
	}
	p.lastFieldId = id

	switch ct {
	case COMPACT_BOOLEAN_TRUE:
		p.phase = phaseReadBoolTrue
		typeId = BOOL
	case COMPACT_BOOLEAN_FALSE:
		p.phase = phaseReadBoolFalse
		typeId = BOOL
	default:
		tt, terr := getTType(ct)
		if terr != nil {
			err = terr
			return
		}
		typeId = tt
		p.phase = phaseReadValue
	}
	return
}

func (p *TCompactProtocol) ReadFieldEnd(ctx context.Context) error {
	if p.phase != phaseReadStruct {
		return invalidState("readFieldEnd")
	}
	return nil
}

// --- container framing -----------------------------------------------------

func (p *TCompactProtocol) writeCollectionHeader(elemType TType, size int32) error {
	if err := checkSizeForProtocol(size, p.cfg); err != nil {
		return err
	}
	ct, err := getCompactType(elemType)
	if err != nil {
		return err
	}
	if size <= 14 {
		return p.writeByteDirect(byte(size<<4) | byte(ct))
	}
	if err := p.writeByteDirect(0xf0 | byte(ct)); err != nil {
		return err
	}
	return p.writeVarint64(uint64(size))
}

func (p *TCompactProtocol) WriteListBegin(ctx context.Context, elemType TType, size int32) error {
	saved, err := p.enterContainer("writeListBegin")
	if err != nil {
		return err
	}
	if err := p.writeCollectionHeader(elemType, size); err != nil {
		return err
	}
	p.containerStack = append(p.containerStack, saved)
	p.phase = phaseWriteContainer
	return nil
}

func (p *TCompactProtocol) WriteListEnd(ctx context.Context) error {
	return p.exitContainer(&p.containerStack)
}

func (p *TCompactProtocol) WriteSetBegin(ctx context.Context, elemType TType, size int32) error {
	saved, err := p.enterContainer("writeSetBegin")
	if err != nil {
		return err
	}
	if err := p.writeCollectionHeader(elemType, size); err != nil {
		return err
	}
	p.containerStack = append(p.containerStack, saved)
	p.phase = phaseWriteContainer
	return nil
}

func (p *TCompactProtocol) WriteSetEnd(ctx context.Context) error {
	return p.exitContainer(&p.containerStack)
}

func (p *TCompactProtocol) WriteMapBegin(ctx context.Context, keyType TType, valueType TType, size int32) error {
	saved, err := p.enterContainer("writeMapBegin")
	if err != nil {
		return err
	}
	if err := checkSizeForProtocol(size, p.cfg); err != nil {
		return err
	}
	if size == 0 {
		if err := p.writeByteDirect(0x00); err != nil {
			return err
		}
	} else {
		if err := p.writeVarint64(uint64(size)); err != nil {
			return err
		}
		kt, err := getCompactType(keyType)
		if err != nil {
			return err
		}
		vt, err := getCompactType(valueType)
		if err != nil {
			return err
		}
		if err := p.writeByteDirect(byte(kt<<4) | byte(vt)); err != nil {
			return err
		}
	}
	p.containerStack = append(p.containerStack, saved)
	p.phase = phaseWriteContainer
	return nil
}

func (p *TCompactProtocol) WriteMapEnd(ctx context.Context) error {
	return p.exitContainer(&p.containerStack)
}

func (p *TCompactProtocol) readCollectionHeader() (elemType TType, size int32, err error) {
	b, rerr := p.trans.ReadByte()
	if rerr != nil {
		err = NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, rerr)
		return
	}
	sizeNibble := b >> 4
	if sizeNibble == 15 {
		size, err = p.readVarint32()
		if err != nil {
			return
		}
	} else {
		size = int32(sizeNibble)
	}
	if err = checkSizeForProtocol(size, p.cfg); err != nil {
		return
	}
	elemType, err = getTType(tCompactType(b & 0x0f))
	if err != nil {
		return
	}
	err = checkContainerElementCount(size, elemType, p.cfg)
	return
}

func (p *TCompactProtocol) ReadListBegin(ctx context.Context) (elemType TType, size int32, err error) {
	saved, err := p.enterReadContainer("readListBegin")
	if err != nil {
		return
	}
	elemType, size, err = p.readCollectionHeader()
	if err != nil {
		return
	}
	p.containerStack = append(p.containerStack, saved)
	p.phase = phaseReadContainer
	return
}

func (p *TCompactProtocol) ReadListEnd(ctx context.Context) error {
	return p.exitContainer(&p.containerStack)
}

func (p *TCompactProtocol) ReadSetBegin(ctx context.Context) (elemType TType, size int32, err error) {
	saved, err := p.enterReadContainer("readSetBegin")
	if err != nil {
		return
	}
	elemType, size, err = p.readCollectionHeader()
	if err != nil {
		return
	}
	p.containerStack = append(p.containerStack, saved)
	p.phase = phaseReadContainer
	return
}

func (p *TCompactProtocol) ReadSetEnd(ctx context.Context) error {
	return p.exitContainer(&p.containerStack)
}

func (p *TCompactProtocol) ReadMapBegin(ctx context.Context) (keyType TType, valueType TType, size int32, err error) {
	saved, err := p.enterReadContainer("readMapBegin")
	if err != nil {
		return
	}
	size, err = p.readVarint32()
	if err != nil {
		return
	}
	if err = checkSizeForProtocol(size, p.cfg); err != nil {
		return
	}
	if size == 0 {
		keyType, valueType = BOOL, BOOL
	} else {
		b, rerr := p.trans.ReadByte()
		if rerr != nil {
			err = NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, rerr)
			return
		}
		keyType, err = getTType(tCompactType(b >> 4))
		if err != nil {
			return
		}
		valueType, err = getTType(tCompactType(b & 0x0f))
		if err != nil {
			return
		}
		if err = checkContainerElementCount(size, keyType, p.cfg); err != nil {
			return
		}
		if err = checkContainerElementCount(size, valueType, p.cfg); err != nil {
			return
		}
	}
	p.containerStack = append(p.containerStack, saved)
	p.phase = phaseReadContainer
	return
}

func (p *TCompactProtocol) ReadMapEnd(ctx context.Context) error {
	return p.exitContainer(&p.containerStack)
}

// --- scalar values -----------------------------------------------------

func (p *TCompactProtocol) WriteBool(ctx context.Context, value bool) error {
	switch p.phase {
	case phaseWriteBool:
		ct := COMPACT_BOOLEAN_FALSE
		if value {
			ct = COMPACT_BOOLEAN_TRUE
		}
		if err := p.writeFieldBeginInternal(ct, p.pendingBoolFieldId); err != nil {
			return err
		}
		p.phase = phaseWriteStruct
		return nil
	case phaseWriteContainer:
		v := byte(0)
		if value {
			v = 1
		}
		return p.writeByteDirect(v)
	default:
		return invalidState("writeBool")
	}
}

func (p *TCompactProtocol) ReadBool(ctx context.Context) (bool, error) {
	switch p.phase {
	case phaseReadBoolTrue:
		p.phase = phaseReadStruct
		return true, nil
	case phaseReadBoolFalse:
		p.phase = phaseReadStruct
		return false, nil
	case phaseReadContainer:
		b, err := p.trans.ReadByte()
		if err != nil {
			return false, NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, err)
		}
		return b != 0, nil
	default:
		return false, invalidState("readBool")
	}
}

func (p *TCompactProtocol) WriteByte(ctx context.Context, value int8) error {
	saved, err := p.enterWriteValue("writeByte")
	if err != nil {
		return err
	}
	if err := p.writeByteDirect(byte(value)); err != nil {
		return err
	}
	p.exitWriteValue(saved)
	return nil
}

func (p *TCompactProtocol) ReadByte(ctx context.Context) (int8, error) {
	saved, err := p.enterReadValue("readByte")
	if err != nil {
		return 0, err
	}
	b, rerr := p.trans.ReadByte()
	if rerr != nil {
		return 0, NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, rerr)
	}
	p.exitReadValue(saved)
	return int8(b), nil
}

func (p *TCompactProtocol) WriteI16(ctx context.Context, value int16) error {
	saved, err := p.enterWriteValue("writeI16")
	if err != nil {
		return err
	}
	if err := p.writeVarint64(int32ToZigzag(int32(value))); err != nil {
		return err
	}
	p.exitWriteValue(saved)
	return nil
}

func (p *TCompactProtocol) ReadI16(ctx context.Context) (int16, error) {
	saved, err := p.enterReadValue("readI16")
	if err != nil {
		return 0, err
	}
	v, rerr := p.readVarint32()
	if rerr != nil {
		return 0, rerr
	}
	p.exitReadValue(saved)
	return int16(zigzagToInt32(uint64(uint32(v)))), nil
}

func (p *TCompactProtocol) WriteI32(ctx context.Context, value int32) error {
	saved, err := p.enterWriteValue("writeI32")
	if err != nil {
		return err
	}
	if err := p.writeVarint64(int32ToZigzag(value)); err != nil {
		return err
	}
	p.exitWriteValue(saved)
	return nil
}

func (p *TCompactProtocol) ReadI32(ctx context.Context) (int32, error) {
	saved, err := p.enterReadValue("readI32")
	if err != nil {
		return 0, err
	}
	v, rerr := p.readVarint64()
	if rerr != nil {
		return 0, rerr
	}
	p.exitReadValue(saved)
	return zigzagToInt32(v), nil
}

func (p *TCompactProtocol) WriteI64(ctx context.Context, value int64) error {
	saved, err := p.enterWriteValue("writeI64")
	if err != nil {
		return err
	}
	if err := p.writeVarint64(int64ToZigzag(value)); err != nil {
		return err
	}
	p.exitWriteValue(saved)
	return nil
}

func (p *TCompactProtocol) ReadI64(ctx context.Context) (int64, error) {
	saved, err := p.enterReadValue("readI64")
	if err != nil {
		return 0, err
	}
	v, rerr := p.readVarint64()
	if rerr != nil {
		return 0, rerr
	}
	p.exitReadValue(saved)
	return zigzagToInt64(v), nil
}

func (p *TCompactProtocol) WriteDouble(ctx context.Context, value float64) error {
	saved, err := p.enterWriteValue("writeDouble")
	if err != nil {
		return err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(value))
	if _, werr := p.trans.Write(buf[:]); werr != nil {
		return werr
	}
	p.exitWriteValue(saved)
	return nil
}

func (p *TCompactProtocol) ReadDouble(ctx context.Context) (float64, error) {
	saved, err := p.enterReadValue("readDouble")
	if err != nil {
		return 0, err
	}
	buf, rerr := safeReadBytes(8, p.trans)
	if rerr != nil {
		return 0, NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, rerr)
	}
	p.exitReadValue(saved)
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
}

// writeBinaryUnchecked writes a varint length then raw bytes without the
// WRITE_VALUE/WRITE_CONTAINER phase dance, for the message-name string that
// the envelope writes directly.
func (p *TCompactProtocol) writeBinaryUnchecked(b []byte) error {
	if err := checkSizeForProtocol(int32(len(b)), p.cfg); err != nil {
		return err
	}
	if err := p.writeVarint64(uint64(len(b))); err != nil {
		return err
	}
	_, err := p.trans.Write(b)
	return err
}

func (p *TCompactProtocol) readStringRaw() (string, error) {
	size, err := p.readVarint32()
	if err != nil {
		return "", err
	}
	if err := checkSizeForProtocol(size, p.cfg); err != nil {
		return "", err
	}
	buf, err := safeReadBytes(size, p.trans)
	if err != nil {
		return "", NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, err)
	}
	return string(buf), nil
}

func (p *TCompactProtocol) WriteString(ctx context.Context, value string) error {
	saved, err := p.enterWriteValue("writeString")
	if err != nil {
		return err
	}
	if err := p.writeBinaryUnchecked([]byte(value)); err != nil {
		return err
	}
	p.exitWriteValue(saved)
	return nil
}

func (p *TCompactProtocol) ReadString(ctx context.Context) (string, error) {
	saved, err := p.enterReadValue("readString")
	if err != nil {
		return "", err
	}
	s, rerr := p.readStringRaw()
	if rerr != nil {
		return "", rerr
	}
	p.exitReadValue(saved)
	return s, nil
}

func (p *TCompactProtocol) WriteBinary(ctx context.Context, value []byte) error {
	saved, err := p.enterWriteValue("writeBinary")
	if err != nil {
		return err
	}
	if err := p.writeBinaryUnchecked(value); err != nil {
		return err
	}
	p.exitWriteValue(saved)
	return nil
}

func (p *TCompactProtocol) ReadBinary(ctx context.Context) ([]byte, error) {
	saved, err := p.enterReadValue("readBinary")
	if err != nil {
		return nil, err
	}
	size, rerr := p.readVarint32()
	if rerr != nil {
		return nil, rerr
	}
	if err := checkSizeForProtocol(size, p.cfg); err != nil {
		return nil, err
	}
	buf, rerr := safeReadBytes(size, p.trans)
	if rerr != nil {
		return nil, NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, rerr)
	}
	p.exitReadValue(saved)
	return buf, nil
}

// WriteUUID and ReadUUID support the supplemented UUID value type (see
// SPEC_FULL.md's Supplemented Features): 16 raw bytes, no varint framing,
// the same shape compact-protocol's own newer UUID extension uses.
func (p *TCompactProtocol) WriteUUID(ctx context.Context, value Tuuid) error {
	saved, err := p.enterWriteValue("writeUUID")
	if err != nil {
		return err
	}
	if _, werr := p.trans.Write(value[:]); werr != nil {
		return werr
	}
	p.exitWriteValue(saved)
	return nil
}

func (p *TCompactProtocol) ReadUUID(ctx context.Context) (Tuuid, error) {
	var out Tuuid
	saved, err := p.enterReadValue("readUUID")
	if err != nil {
		return out, err
	}
	buf, rerr := safeReadBytes(16, p.trans)
	if rerr != nil {
		return out, NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, rerr)
	}
	copy(out[:], buf)
	p.exitReadValue(saved)
	return out, nil
}

func (p *TCompactProtocol) Skip(ctx context.Context, fieldType TType) error {
	return Skip(ctx, p, fieldType, int(p.cfg.GetMaxRecursionDepth()))
}

var (
	_ TProtocol            = (*TCompactProtocol)(nil)
	_ TConfigurationSetter = (*TCompactProtocol)(nil)
)
