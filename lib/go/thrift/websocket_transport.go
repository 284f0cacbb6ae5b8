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

	"github.com/gorilla/websocket"
)

// TWebSocketTransport carries one compact-protocol message per binary
// websocket frame, letting the codec ride a browser-facing connection the
// way rdp-html5 carries its own binary protocol over gorilla/websocket to a
// browser client. Each flush sends exactly one binary message; each read
// pulls the next whole message into an internal buffer, since websocket
// message boundaries (unlike a raw TCP stream) already give the codec the
// framing TFramedTransport would otherwise need to add.
type TWebSocketTransport struct {
	conn     *websocket.Conn
	readBuf  bytes.Buffer
	writeBuf bytes.Buffer
}

func NewTWebSocketTransport(conn *websocket.Conn) *TWebSocketTransport {
	return &TWebSocketTransport{conn: conn}
}

func (t *TWebSocketTransport) Open() error  { return nil }
func (t *TWebSocketTransport) IsOpen() bool { return t.conn != nil }
func (t *TWebSocketTransport) Close() error { return t.conn.Close() }

func (t *TWebSocketTransport) Read(p []byte) (int, error) {
	if t.readBuf.Len() == 0 {
		if err := t.readMessage(); err != nil {
			return 0, err
		}
	}
	return t.readBuf.Read(p)
}

func (t *TWebSocketTransport) ReadByte() (byte, error) {
	if t.readBuf.Len() == 0 {
		if err := t.readMessage(); err != nil {
			return 0, err
		}
	}
	return t.readBuf.ReadByte()
}

func (t *TWebSocketTransport) readMessage() error {
	kind, data, err := t.conn.ReadMessage()
	if err != nil {
		return NewTTransportException(END_OF_FILE, err)
	}
	if kind != websocket.BinaryMessage {
		return NewTTransportExceptionf(UNKNOWN_TRANSPORT_EXCEPTION, "websocket transport: expected binary message, got kind %d", kind)
	}
	t.readBuf.Reset()
	t.readBuf.Write(data)
	return nil
}

func (t *TWebSocketTransport) Write(p []byte) (int, error) { return t.writeBuf.Write(p) }
func (t *TWebSocketTransport) WriteByte(b byte) error       { return t.writeBuf.WriteByte(b) }
func (t *TWebSocketTransport) WriteString(s string) (int, error) {
	return t.writeBuf.WriteString(s)
}

func (t *TWebSocketTransport) Flush(ctx context.Context) error {
	if t.writeBuf.Len() == 0 {
		return nil
	}
	err := t.conn.WriteMessage(websocket.BinaryMessage, t.writeBuf.Bytes())
	t.writeBuf.Reset()
	if err != nil {
		return NewTTransportException(UNKNOWN_TRANSPORT_EXCEPTION, err)
	}
	return nil
}

var (
	_ TTransport     = (*TWebSocketTransport)(nil)
	_ TRichTransport = (*TWebSocketTransport)(nil)
)
