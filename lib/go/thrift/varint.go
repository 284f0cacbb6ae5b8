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

// This file holds the codec's arithmetic core: unsigned LEB128 varints and
// zig-zag signed encoding. Unlike the source this module replaces, encoding
// never writes to stderr and never mis-signs the high bit of a byte string;
// see DESIGN.md for the bug list this file deliberately does not reproduce.

// encodeUvarint64 appends the LEB128 encoding of n to buf, 7 bits per byte,
// continuation bit set on every byte but the last.
func encodeUvarint64(buf []byte, n uint64) []byte {
	for n >= 0x80 {
		buf = append(buf, byte(n)|0x80)
		n >>= 7
	}
	return append(buf, byte(n))
}

// int32ToZigzag maps a signed 32-bit value onto the unsigned range so that
// small-magnitude negatives still encode as short varints: 0,-1,1,-2,2,...
// becomes 0,1,2,3,4,...
func int32ToZigzag(n int32) uint64 {
	return uint64((uint32(n) << 1) ^ uint32(n>>31))
}

func int64ToZigzag(n int64) uint64 {
	return (uint64(n) << 1) ^ uint64(n>>63)
}

func zigzagToInt32(n uint64) int32 {
	u := uint32(n)
	return int32(u>>1) ^ -int32(u&1)
}

func zigzagToInt64(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}

// (*TCompactProtocol).writeVarint64, readVarint64 and readVarint32 live in
// compact_protocol.go alongside the phase machine, since they read and write
// through the protocol's transport (writeVarint64 also encodes into the
// protocol's scratch buffer).
