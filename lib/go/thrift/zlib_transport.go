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

	"github.com/klauspost/compress/zlib"
)

// TZlibTransport frames and compresses every flushed write as one zlib
// stream, then inflates it again one frame at a time on read. It is grounded
// on mebo's use of klauspost/compress for its payload codecs: that module
// reaches for the same package to keep encoded blocks small over the wire,
// and this transport gives the compact protocol the same option when it
// rides a bandwidth-constrained link instead of a raw socket.
type TZlibTransport struct {
	inner    *TFramedTransport
	writeBuf bytes.Buffer
}

func NewTZlibTransport(transport TTransport) *TZlibTransport {
	return NewTZlibTransportConf(transport, nil)
}

func NewTZlibTransportConf(transport TTransport, cfg *TConfiguration) *TZlibTransport {
	return &TZlibTransport{inner: NewTFramedTransportConf(transport, cfg)}
}

func (t *TZlibTransport) Open() error  { return t.inner.Open() }
func (t *TZlibTransport) IsOpen() bool { return t.inner.IsOpen() }
func (t *TZlibTransport) Close() error { return t.inner.Close() }

func (t *TZlibTransport) Read(p []byte) (int, error) {
	if t.inner.readBuf.Len() == 0 {
		if err := t.fillFrame(); err != nil {
			return 0, err
		}
	}
	return t.inner.readBuf.Read(p)
}

func (t *TZlibTransport) ReadByte() (byte, error) {
	if t.inner.readBuf.Len() == 0 {
		if err := t.fillFrame(); err != nil {
			return 0, err
		}
	}
	return t.inner.readBuf.ReadByte()
}

func (t *TZlibTransport) fillFrame() error {
	if err := t.inner.readFrame(); err != nil {
		return err
	}
	zr, err := zlib.NewReader(bytes.NewReader(t.inner.readBuf.Bytes()))
	if err != nil {
		return NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, err)
	}
	defer zr.Close()
	var plain bytes.Buffer
	if _, err := plain.ReadFrom(zr); err != nil {
		return NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, err)
	}
	t.inner.readBuf.Reset()
	t.inner.readBuf.Write(plain.Bytes())
	return nil
}

func (t *TZlibTransport) Write(p []byte) (int, error) { return t.writeBuf.Write(p) }
func (t *TZlibTransport) WriteByte(b byte) error       { return t.writeBuf.WriteByte(b) }
func (t *TZlibTransport) WriteString(s string) (int, error) {
	return t.writeBuf.WriteString(s)
}

func (t *TZlibTransport) Flush(ctx context.Context) error {
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(t.writeBuf.Bytes()); err != nil {
		return NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, err)
	}
	if err := zw.Close(); err != nil {
		return NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, err)
	}
	t.writeBuf.Reset()
	t.inner.writeBuf.Reset()
	t.inner.writeBuf.Write(compressed.Bytes())
	return t.inner.Flush(ctx)
}

func (t *TZlibTransport) SetTConfiguration(cfg *TConfiguration) { t.inner.SetTConfiguration(cfg) }

var (
	_ TTransport           = (*TZlibTransport)(nil)
	_ TRichTransport       = (*TZlibTransport)(nil)
	_ TConfigurationSetter = (*TZlibTransport)(nil)
)
