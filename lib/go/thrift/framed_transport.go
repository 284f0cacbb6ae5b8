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
	"encoding/binary"
	"io"
)

// TFramedTransport prefixes every flushed write with a 4-byte big-endian
// length and, on read, only ever serves bytes from the frame it has
// buffered, re-filling from the wrapped transport one frame at a time. It
// is the classic Thrift framing layer, used here to let a compact-protocol
// message ride a connection that has no message boundaries of its own.
type TFramedTransport struct {
	transport TTransport
	writeBuf  bytes.Buffer
	readBuf   bytes.Buffer
	cfg       *TConfiguration
}

func NewTFramedTransport(transport TTransport) *TFramedTransport {
	return NewTFramedTransportConf(transport, nil)
}

func NewTFramedTransportConf(transport TTransport, cfg *TConfiguration) *TFramedTransport {
	PropagateTConfiguration(transport, cfg)
	return &TFramedTransport{transport: transport, cfg: cfg}
}

func (t *TFramedTransport) Open() error      { return t.transport.Open() }
func (t *TFramedTransport) IsOpen() bool     { return t.transport.IsOpen() }
func (t *TFramedTransport) Close() error     { return t.transport.Close() }

func (t *TFramedTransport) Read(p []byte) (int, error) {
	if t.readBuf.Len() == 0 {
		if err := t.readFrame(); err != nil {
			return 0, err
		}
	}
	return t.readBuf.Read(p)
}

func (t *TFramedTransport) ReadByte() (byte, error) {
	if t.readBuf.Len() == 0 {
		if err := t.readFrame(); err != nil {
			return 0, err
		}
	}
	return t.readBuf.ReadByte()
}

func (t *TFramedTransport) readFrame() error {
	var header [4]byte
	if _, err := io.ReadFull(t.transport, header[:]); err != nil {
		return wrapFrameReadError(err)
	}
	size := int32(binary.BigEndian.Uint32(header[:]))
	if err := checkSizeForProtocol(size, frameSizeConfig(t.cfg)); err != nil {
		return err
	}
	frame := make([]byte, size)
	if _, err := io.ReadFull(t.transport, frame); err != nil {
		return wrapFrameReadError(err)
	}
	t.readBuf.Reset()
	t.readBuf.Write(frame)
	return nil
}

// wrapFrameReadError classifies a raw I/O error from the wrapped transport
// into a *TTransportException, distinguishing a timeout (the caller may
// want to retry) from a clean EOF (the peer closed) from anything else.
func wrapFrameReadError(err error) error {
	if isTimeoutError(err) {
		return NewTTransportException(TIMED_OUT, err)
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return NewTTransportException(END_OF_FILE, err)
	}
	return NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, err)
}

func (t *TFramedTransport) Write(p []byte) (int, error) { return t.writeBuf.Write(p) }
func (t *TFramedTransport) WriteByte(b byte) error       { return t.writeBuf.WriteByte(b) }
func (t *TFramedTransport) WriteString(s string) (int, error) {
	return t.writeBuf.WriteString(s)
}

func (t *TFramedTransport) Flush(ctx context.Context) error {
	size := t.writeBuf.Len()
	if err := checkSizeForProtocol(int32(size), frameSizeConfig(t.cfg)); err != nil {
		t.writeBuf.Reset()
		return err
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(size))
	if _, err := t.transport.Write(header[:]); err != nil {
		return err
	}
	if _, err := t.writeBuf.WriteTo(t.transport); err != nil {
		return err
	}
	return t.transport.Flush(ctx)
}

func (t *TFramedTransport) SetTConfiguration(cfg *TConfiguration) {
	t.cfg = cfg
	PropagateTConfiguration(t.transport, cfg)
}

// frameSizeConfig reuses checkSizeForProtocol's size-limit machinery
// against MaxFrameSize instead of CompactSizeLimit, since a frame bounds
// the whole message, not one field.
func frameSizeConfig(cfg *TConfiguration) *TConfiguration {
	return &TConfiguration{CompactSizeLimit: cfg.GetMaxFrameSize()}
}

var (
	_ TTransport           = (*TFramedTransport)(nil)
	_ TRichTransport       = (*TFramedTransport)(nil)
	_ TConfigurationSetter = (*TFramedTransport)(nil)
)
