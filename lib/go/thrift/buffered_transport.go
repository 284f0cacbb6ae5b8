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
)

const DEFAULT_BUFFERED_TRANSPORT_SIZE = 4096

// TBufferedTransport wraps a TTransport with bufio, so the codec's
// byte-at-a-time varint and field-header reads don't each cost a syscall
// on a socket-backed transport.
type TBufferedTransport struct {
	bufio.Reader
	bufio.Writer
	transport TTransport
}

func NewTBufferedTransport(transport TTransport, bufferSize int) *TBufferedTransport {
	if bufferSize <= 0 {
		bufferSize = DEFAULT_BUFFERED_TRANSPORT_SIZE
	}
	return &TBufferedTransport{
		Reader:    *bufio.NewReaderSize(transport, bufferSize),
		Writer:    *bufio.NewWriterSize(transport, bufferSize),
		transport: transport,
	}
}

func (p *TBufferedTransport) IsOpen() bool { return p.transport.IsOpen() }
func (p *TBufferedTransport) Open() error  { return p.transport.Open() }
func (p *TBufferedTransport) Close() error { return p.transport.Close() }

func (p *TBufferedTransport) Read(b []byte) (int, error) { return p.Reader.Read(b) }

func (p *TBufferedTransport) Write(b []byte) (int, error) { return p.Writer.Write(b) }

func (p *TBufferedTransport) WriteString(s string) (int, error) { return p.Writer.WriteString(s) }

func (p *TBufferedTransport) Flush(ctx context.Context) error {
	if err := p.Writer.Flush(); err != nil {
		return err
	}
	return p.transport.Flush(ctx)
}

var (
	_ TTransport     = (*TBufferedTransport)(nil)
	_ TRichTransport = (*TBufferedTransport)(nil)
)
