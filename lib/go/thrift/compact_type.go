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

import "fmt"

// tCompactType is the 4-bit tag the compact wire format uses in place of
// TType wherever a type occupies a nibble: field headers, container
// element tags, and the single-byte header a boolean field fuses its value
// into.
type tCompactType byte

const (
	COMPACT_STOP          tCompactType = 0x00
	COMPACT_BOOLEAN_TRUE  tCompactType = 0x01
	COMPACT_BOOLEAN_FALSE tCompactType = 0x02
	COMPACT_BYTE          tCompactType = 0x03
	COMPACT_I16           tCompactType = 0x04
	COMPACT_I32           tCompactType = 0x05
	COMPACT_I64           tCompactType = 0x06
	COMPACT_DOUBLE        tCompactType = 0x07
	COMPACT_STRING        tCompactType = 0x08
	COMPACT_LIST          tCompactType = 0x09
	COMPACT_SET           tCompactType = 0x0A
	COMPACT_MAP           tCompactType = 0x0B
	COMPACT_STRUCT        tCompactType = 0x0C
	COMPACT_UUID          tCompactType = 0x0D
)

// ttypeToCompactType maps a TType to the tag used for it everywhere except
// a field header's boolean slot, where the tag instead carries the value
// (COMPACT_BOOLEAN_TRUE/FALSE); WriteFieldBegin defers a BOOL field's header
// and WriteBool emits it with the tag matching the value for that reason.
var ttypeToCompactType = [...]tCompactType{
	STOP:   COMPACT_STOP,
	BOOL:   COMPACT_BOOLEAN_TRUE,
	BYTE:   COMPACT_BYTE,
	DOUBLE: COMPACT_DOUBLE,
	I16:    COMPACT_I16,
	I32:    COMPACT_I32,
	I64:    COMPACT_I64,
	STRING: COMPACT_STRING,
	STRUCT: COMPACT_STRUCT,
	MAP:    COMPACT_MAP,
	SET:    COMPACT_SET,
	LIST:   COMPACT_LIST,
	UUID:   COMPACT_UUID,
}

func getCompactType(t TType) (tCompactType, error) {
	if int(t) < 0 || int(t) >= len(ttypeToCompactType) {
		return 0, NewTProtocolExceptionWithType(UNKNOWN_TYPE_TAG, fmt.Errorf("compact protocol: unknown TType %d", t))
	}
	ct := ttypeToCompactType[t]
	if ct == 0 && t != STOP {
		return 0, NewTProtocolExceptionWithType(UNKNOWN_TYPE_TAG, fmt.Errorf("compact protocol: unknown TType %d", t))
	}
	return ct, nil
}

// compactTypeToTType is getCompactType's inverse, used by ReadFieldBegin and
// every container-element reader to turn a wire tag back into a TType. Both
// boolean tags map to BOOL. A non-zero tag whose entry holds STOP (the zero
// TType), or a tag past the end of the table, is unassigned, and getTType
// reports it as UNKNOWN_TYPE_TAG.
var compactTypeToTType = [...]TType{
	COMPACT_STOP:          STOP,
	COMPACT_BOOLEAN_TRUE:  BOOL,
	COMPACT_BOOLEAN_FALSE: BOOL,
	COMPACT_BYTE:          BYTE,
	COMPACT_I16:           I16,
	COMPACT_I32:           I32,
	COMPACT_I64:           I64,
	COMPACT_DOUBLE:        DOUBLE,
	COMPACT_STRING:        STRING,
	COMPACT_LIST:          LIST,
	COMPACT_SET:           SET,
	COMPACT_MAP:           MAP,
	COMPACT_STRUCT:        STRUCT,
	COMPACT_UUID:          UUID,
}

func getTType(ct tCompactType) (TType, error) {
	if int(ct) < 0 || int(ct) >= len(compactTypeToTType) {
		return STOP, NewTProtocolExceptionWithType(UNKNOWN_TYPE_TAG, fmt.Errorf("compact protocol: unknown compact type tag 0x%x", ct))
	}
	if ct != COMPACT_STOP && compactTypeToTType[ct] == STOP {
		return STOP, NewTProtocolExceptionWithType(UNKNOWN_TYPE_TAG, fmt.Errorf("compact protocol: unknown compact type tag 0x%x", ct))
	}
	return compactTypeToTType[ct], nil
}

// getMinSerializedSize is the lower bound readCollectionHeader and
// ReadMapBegin use to validate a claimed element count before looping or
// allocating size times: every element of t occupies at least this many
// bytes on the wire, so a count that implies more remaining bytes than the
// configured max message size allows is caught before it turns into a
// huge, slow allocation.
func getMinSerializedSize(t TType) int {
	switch t {
	case STOP, VOID:
		return 0
	case BOOL, BYTE:
		return 1
	case I16:
		return 1
	case I32:
		return 1
	case I64:
		return 1
	case DOUBLE:
		return 8
	case UUID:
		return 16
	case STRING:
		return 1
	case STRUCT:
		return 1 // at minimum, just the stop byte
	case MAP:
		return 1 // empty map, 1 byte
	case SET, LIST:
		return 1 // empty list/set, 1 byte
	default:
		return 1
	}
}

// checkContainerElementCount guards a claimed element count against
// cfg's max message size, using elemType's minimum per-element width: a
// count that could not possibly fit is rejected as SIZE_LIMIT before the
// caller loops or allocates size times.
func checkContainerElementCount(size int32, elemType TType, cfg *TConfiguration) error {
	minSize := getMinSerializedSize(elemType)
	if minSize == 0 {
		return nil
	}
	if int64(size)*int64(minSize) > int64(cfg.GetMaxMessageSize()) {
		return NewTProtocolExceptionWithType(SIZE_LIMIT, fmt.Errorf("compact protocol: container of %d elements exceeds max message size", size))
	}
	return nil
}
