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
	"bufio"
	"context"
	"io"
)

// TTransport is the byte sink/source the codec is driven over. It is the
// one external collaborator spec.md §1 declines to specify; everything
// below this interface is this repository's own addition (§11 of
// SPEC_FULL.md), not part of the codec itself.
type TTransport interface {
	io.Closer
	io.Reader
	io.Writer

	Open() error
	IsOpen() bool
	Flush(ctx context.Context) error
}

// TRichTransport is what TCompactProtocol actually reads and writes
// through: a TTransport augmented with byte-at-a-time reads and writes
// (field headers, container headers and varints are read one byte at a
// time; header bytes are written one at a time) and WriteString.
type TRichTransport interface {
	TTransport
	io.ByteReader
	io.ByteWriter
	WriteString(s string) (int, error)
}

// NewTRichTransport adapts a plain TTransport that does not already
// implement TRichTransport, the same role the teacher's constructor of the
// same name plays for TCompactProtocolConf.
func NewTRichTransport(t TTransport) TRichTransport {
	return &richTransport{TTransport: t, br: bufio.NewReader(t)}
}

type richTransport struct {
	TTransport
	br *bufio.Reader
}

func (t *richTransport) Read(p []byte) (int, error) { return t.br.Read(p) }
func (t *richTransport) ReadByte() (byte, error)     { return t.br.ReadByte() }

func (t *richTransport) WriteByte(b byte) error {
	_, err := t.TTransport.Write([]byte{b})
	return err
}

func (t *richTransport) WriteString(s string) (int, error) {
	return t.TTransport.Write([]byte(s))
}

// safeReadBytes reads exactly size bytes from r into a freshly allocated
// slice; ReadString, ReadBinary, ReadDouble and ReadUUID read their
// payloads through it.
func safeReadBytes(size int32, r io.Reader) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, size)
	_, err := io.ReadFull(r, buf)
	if err != nil {
		return nil, err
	}
	return buf, nil
}
