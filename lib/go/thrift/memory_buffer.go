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
	"bytes"
	"context"
)

// TMemoryBuffer is an in-memory TTransport backed by a bytes.Buffer. It is
// the transport every test and example in this repository drives the
// codec over, and the simplest concrete implementation of the contract
// spec.md §6 leaves abstract.
type TMemoryBuffer struct {
	*bytes.Buffer
	size int
}

// NewTMemoryBuffer creates an empty, growable in-memory transport.
func NewTMemoryBuffer() *TMemoryBuffer {
	return &TMemoryBuffer{Buffer: &bytes.Buffer{}}
}

// NewTMemoryBufferLen pre-sizes the internal buffer, avoiding reallocation
// for callers that know roughly how large a message will be.
func NewTMemoryBufferLen(size int) *TMemoryBuffer {
	buf := make([]byte, 0, size)
	return &TMemoryBuffer{Buffer: bytes.NewBuffer(buf), size: size}
}

func (p *TMemoryBuffer) IsOpen() bool              { return true }
func (p *TMemoryBuffer) Open() error                { return nil }
func (p *TMemoryBuffer) Close() error               { p.Buffer.Reset(); return nil }
func (p *TMemoryBuffer) Flush(ctx context.Context) error { return nil }

// bytes.Buffer already implements ReadByte/WriteByte/WriteString, so a
// TMemoryBuffer satisfies TRichTransport directly and NewTCompactProtocolConf
// never needs to wrap it in the bufio adapter from transport.go.
var (
	_ TTransport     = (*TMemoryBuffer)(nil)
	_ TRichTransport = (*TMemoryBuffer)(nil)
)
