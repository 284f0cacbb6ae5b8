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

	"github.com/cespare/xxhash/v2"
)

// TCheckedTransport appends an 8-byte xxhash64 trailer to every frame it
// writes and verifies it on read, surfacing a mismatch as
// TTransportException{CHECKSUM_MISMATCH} rather than letting a corrupted
// frame reach the protocol layer as a confusing decode error. Grounded on
// mebo's use of cespare/xxhash/v2 to checksum its encoded blocks.
type TCheckedTransport struct {
	inner *TFramedTransport
}

func NewTCheckedTransport(transport TTransport) *TCheckedTransport {
	return NewTCheckedTransportConf(transport, nil)
}

func NewTCheckedTransportConf(transport TTransport, cfg *TConfiguration) *TCheckedTransport {
	return &TCheckedTransport{inner: NewTFramedTransportConf(transport, cfg)}
}

func (t *TCheckedTransport) Open() error  { return t.inner.Open() }
func (t *TCheckedTransport) IsOpen() bool { return t.inner.IsOpen() }
func (t *TCheckedTransport) Close() error { return t.inner.Close() }

func (t *TCheckedTransport) Read(p []byte) (int, error) {
	if t.inner.readBuf.Len() == 0 {
		if err := t.fillFrame(); err != nil {
			return 0, err
		}
	}
	return t.inner.readBuf.Read(p)
}

func (t *TCheckedTransport) ReadByte() (byte, error) {
	if t.inner.readBuf.Len() == 0 {
		if err := t.fillFrame(); err != nil {
			return 0, err
		}
	}
	return t.inner.readBuf.ReadByte()
}

func (t *TCheckedTransport) fillFrame() error {
	if err := t.inner.readFrame(); err != nil {
		return err
	}
	raw := t.inner.readBuf.Bytes()
	if len(raw) < 8 {
		return NewTTransportException(CHECKSUM_MISMATCH, errShortFrame)
	}
	payload, trailer := raw[:len(raw)-8], raw[len(raw)-8:]
	want := binary.BigEndian.Uint64(trailer)
	if got := xxhash.Sum64(payload); got != want {
		return NewTTransportExceptionf(CHECKSUM_MISMATCH, "checked transport: xxhash mismatch: got %x want %x", got, want)
	}
	plain := append([]byte(nil), payload...)
	t.inner.readBuf.Reset()
	t.inner.readBuf.Write(plain)
	return nil
}

func (t *TCheckedTransport) Write(p []byte) (int, error) { return t.inner.Write(p) }
func (t *TCheckedTransport) WriteByte(b byte) error       { return t.inner.WriteByte(b) }
func (t *TCheckedTransport) WriteString(s string) (int, error) {
	return t.inner.WriteString(s)
}

func (t *TCheckedTransport) Flush(ctx context.Context) error {
	sum := xxhash.Sum64(t.inner.writeBuf.Bytes())
	var trailer [8]byte
	binary.BigEndian.PutUint64(trailer[:], sum)
	t.inner.writeBuf.Write(trailer[:])
	return t.inner.Flush(ctx)
}

func (t *TCheckedTransport) SetTConfiguration(cfg *TConfiguration) { t.inner.SetTConfiguration(cfg) }

var errShortFrame = NewTTransportExceptionf(CHECKSUM_MISMATCH, "checked transport: frame shorter than its checksum trailer")

var (
	_ TTransport           = (*TCheckedTransport)(nil)
	_ TRichTransport       = (*TCheckedTransport)(nil)
	_ TConfigurationSetter = (*TCheckedTransport)(nil)
)
