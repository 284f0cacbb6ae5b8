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

	"github.com/pierrec/lz4/v4"
)

// TLz4Transport is TZlibTransport's low-latency sibling: same one-frame-per-
// message shape, but backed by pierrec/lz4 for deployments that favor
// throughput over compression ratio. Grounded on mebo's go.mod, which pairs
// klauspost/compress with pierrec/lz4 for exactly this tradeoff.
type TLz4Transport struct {
	inner    *TFramedTransport
	writeBuf bytes.Buffer
}

func NewTLz4Transport(transport TTransport) *TLz4Transport {
	return NewTLz4TransportConf(transport, nil)
}

func NewTLz4TransportConf(transport TTransport, cfg *TConfiguration) *TLz4Transport {
	return &TLz4Transport{inner: NewTFramedTransportConf(transport, cfg)}
}

func (t *TLz4Transport) Open() error  { return t.inner.Open() }
func (t *TLz4Transport) IsOpen() bool { return t.inner.IsOpen() }
func (t *TLz4Transport) Close() error { return t.inner.Close() }

func (t *TLz4Transport) Read(p []byte) (int, error) {
	if t.inner.readBuf.Len() == 0 {
		if err := t.fillFrame(); err != nil {
			return 0, err
		}
	}
	return t.inner.readBuf.Read(p)
}

func (t *TLz4Transport) ReadByte() (byte, error) {
	if t.inner.readBuf.Len() == 0 {
		if err := t.fillFrame(); err != nil {
			return 0, err
		}
	}
	return t.inner.readBuf.ReadByte()
}

func (t *TLz4Transport) fillFrame() error {
	if err := t.inner.readFrame(); err != nil {
		return err
	}
	zr := lz4.NewReader(bytes.NewReader(t.inner.readBuf.Bytes()))
	var plain bytes.Buffer
	if _, err := plain.ReadFrom(zr); err != nil {
		return NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, err)
	}
	t.inner.readBuf.Reset()
	t.inner.readBuf.Write(plain.Bytes())
	return nil
}

func (t *TLz4Transport) Write(p []byte) (int, error) { return t.writeBuf.Write(p) }
func (t *TLz4Transport) WriteByte(b byte) error       { return t.writeBuf.WriteByte(b) }
func (t *TLz4Transport) WriteString(s string) (int, error) {
	return t.writeBuf.WriteString(s)
}

func (t *TLz4Transport) Flush(ctx context.Context) error {
	var compressed bytes.Buffer
	zw := lz4.NewWriter(&compressed)
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

func (t *TLz4Transport) SetTConfiguration(cfg *TConfiguration) { t.inner.SetTConfiguration(cfg) }

var (
	_ TTransport           = (*TLz4Transport)(nil)
	_ TRichTransport       = (*TLz4Transport)(nil)
	_ TConfigurationSetter = (*TLz4Transport)(nil)
)
