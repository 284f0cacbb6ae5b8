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
	"fmt"
)

// SkipDefaultDepth is the entry point generated code calls when it reads a
// field of a type it no longer recognizes (schema evolution, §1's declared
// Non-goal of deciding anything about the mismatch itself — the codec only
// has to consume the bytes and hand control back). It bounds recursion at
// DEFAULT_MAX_RECURSION_DEPTH, matching the protocol's own configuration
// default.
func SkipDefaultDepth(ctx context.Context, prot TProtocol, typeId TType) error {
	return Skip(ctx, prot, typeId, DEFAULT_MAX_RECURSION_DEPTH)
}

// Skip consumes one value of typeId from prot without interpreting it,
// recursing into structs, lists, sets, and maps. maxDepth is decremented on
// every recursive call; reaching zero while more nesting remains reports
// DEPTH_LIMIT rather than recursing into the Go call stack indefinitely on
// an adversarial or corrupt message.
func Skip(ctx context.Context, prot TProtocol, typeId TType, maxDepth int) error {
	if maxDepth <= 0 {
		return NewTProtocolExceptionWithType(DEPTH_LIMIT, fmt.Errorf("compact protocol: depth limit exceeded while skipping"))
	}

	switch typeId {
	case BOOL:
		_, err := prot.ReadBool(ctx)
		return err
	case BYTE:
		_, err := prot.ReadByte(ctx)
		return err
	case I16:
		_, err := prot.ReadI16(ctx)
		return err
	case I32:
		_, err := prot.ReadI32(ctx)
		return err
	case I64:
		_, err := prot.ReadI64(ctx)
		return err
	case DOUBLE:
		_, err := prot.ReadDouble(ctx)
		return err
	case STRING:
		_, err := prot.ReadBinary(ctx)
		return err
	case UUID:
		_, err := prot.ReadUUID(ctx)
		return err
	case STRUCT:
		if _, err := prot.ReadStructBegin(ctx); err != nil {
			return err
		}
		for {
			_, fieldTypeId, _, err := prot.ReadFieldBegin(ctx)
			if err != nil {
				return err
			}
			if fieldTypeId == STOP {
				break
			}
			if err := Skip(ctx, prot, fieldTypeId, maxDepth-1); err != nil {
				return err
			}
			if err := prot.ReadFieldEnd(ctx); err != nil {
				return err
			}
		}
		return prot.ReadStructEnd(ctx)
	case MAP:
		keyType, valueType, size, err := prot.ReadMapBegin(ctx)
		if err != nil {
			return err
		}
		for i := int32(0); i < size; i++ {
			if err := Skip(ctx, prot, keyType, maxDepth-1); err != nil {
				return err
			}
			if err := Skip(ctx, prot, valueType, maxDepth-1); err != nil {
				return err
			}
		}
		return prot.ReadMapEnd(ctx)
	case SET:
		elemType, size, err := prot.ReadSetBegin(ctx)
		if err != nil {
			return err
		}
		for i := int32(0); i < size; i++ {
			if err := Skip(ctx, prot, elemType, maxDepth-1); err != nil {
				return err
			}
		}
		return prot.ReadSetEnd(ctx)
	case LIST:
		elemType, size, err := prot.ReadListBegin(ctx)
		if err != nil {
			return err
		}
		for i := int32(0); i < size; i++ {
			if err := Skip(ctx, prot, elemType, maxDepth-1); err != nil {
				return err
			}
		}
		return prot.ReadListEnd(ctx)
	default:
		return NewTProtocolExceptionWithType(UNKNOWN_TYPE_TAG, fmt.Errorf("compact protocol: cannot skip unknown type %d", typeId))
	}
}
