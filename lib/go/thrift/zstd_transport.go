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

	"github.com/valyala/gozstd"
)

// TZstdTransport is the third point in the compression tradeoff triangle
// (zlib for ratio, lz4 for speed, zstd for the middle ground), backed by
// valyala/gozstd the way mebo's storage layer is.
type TZstdTransport struct {
	inner    *TFramedTransport
	writeBuf bytes.Buffer
}

func NewTZstdTransport(transport TTransport) *TZstdTransport {
	return NewTZstdTransportConf(transport, nil)
}

func NewTZstdTransportConf(transport TTransport, cfg *TConfiguration) *TZstdTransport {
	return &TZstdTransport{inner: NewTFramedTransportConf(transport, cfg)}
}

func (t *TZstdTransport) Open() error  { return t.inner.Open() }
func (t *TZstdTransport) IsOpen() bool { return t.inner.IsOpen() }
func (t *TZstdTransport) Close() error { return t.inner.Close() }

func (t *TZstdTransport) Read(p []byte) (int, error) {
	if t.inner.readBuf.Len() == 0 {
		if err := t.fillFrame(); err != nil {
			return 0, err
		}
	}
	return t.inner.readBuf.Read(p)
}

func (t *TZstdTransport) ReadByte() (byte, error) {
	if t.inner.readBuf.Len() == 0 {
		if err := t.fillFrame(); err != nil {
			return 0, err
		}
	}
	return t.inner.readBuf.ReadByte()
}

func (t *TZstdTransport) fillFrame() error {
	if err := t.inner.readFrame(); err != nil {
		return err
	}
	plain, err := gozstd.Decompress(nil, t.inner.readBuf.Bytes())
	if err != nil {
		return NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, err)
	}
	t.inner.readBuf.Reset()
	t.inner.readBuf.Write(plain)
	return nil
}

func (t *TZstdTransport) Write(p []byte) (int, error) { return t.writeBuf.Write(p) }
func (t *TZstdTransport) WriteByte(b byte) error       { return t.writeBuf.WriteByte(b) }
func (t *TZstdTransport) WriteString(s string) (int, error) {
	return t.writeBuf.WriteString(s)
}

func (t *TZstdTransport) Flush(ctx context.Context) error {
	compressed := gozstd.Compress(nil, t.writeBuf.Bytes())
	t.writeBuf.Reset()
	t.inner.writeBuf.Reset()
	t.inner.writeBuf.Write(compressed)
	return t.inner.Flush(ctx)
}

func (t *TZstdTransport) SetTConfiguration(cfg *TConfiguration) { t.inner.SetTConfiguration(cfg) }

var (
	_ TTransport           = (*TZstdTransport)(nil)
	_ TRichTransport       = (*TZstdTransport)(nil)
	_ TConfigurationSetter = (*TZstdTransport)(nil)
)
