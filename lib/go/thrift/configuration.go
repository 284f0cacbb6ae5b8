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
	"fmt"
	"time"
)

const (
	DEFAULT_MAX_MESSAGE_SIZE    = 100 * 1024 * 1024
	DEFAULT_MAX_FRAME_SIZE      = 16384000
	DEFAULT_MAX_RECURSION_DEPTH = 64
	DEFAULT_CONNECT_TIMEOUT     = 0 * time.Second
	DEFAULT_SOCKET_TIMEOUT      = 0 * time.Second

	// DEFAULT_COMPACT_SIZE_LIMIT resolves spec §9's open question in favor
	// of the compact-protocol specification's wider signed-32-bit bound
	// rather than the source's narrower 0x7FFF. See DESIGN.md.
	DEFAULT_COMPACT_SIZE_LIMIT = int32(0x7FFFFFFF)

	// LEGACY_COMPACT_SIZE_LIMIT reproduces the source's bound for callers
	// that need bug-for-bug interop with it.
	LEGACY_COMPACT_SIZE_LIMIT = int32(0x7FFF)
)

// TConfiguration carries the knobs a protocol or transport needs but that
// don't belong on every call: size limits, recursion depth, and I/O
// timeouts. A nil *TConfiguration is valid everywhere and behaves as
// all-defaults.
type TConfiguration struct {
	MaxMessageSize    int32
	MaxFrameSize      int32
	MaxRecursionDepth int32
	CompactSizeLimit  int32
	ConnectTimeout    time.Duration
	SocketTimeout     time.Duration

	// noPropagation, when set, makes PropagateTConfiguration leave the
	// target's own configuration alone. No constructor in this package
	// sets it.
	noPropagation bool
}

func (c *TConfiguration) GetMaxMessageSize() int32 {
	if c == nil || c.MaxMessageSize <= 0 {
		return DEFAULT_MAX_MESSAGE_SIZE
	}
	return c.MaxMessageSize
}

func (c *TConfiguration) GetMaxFrameSize() int32 {
	if c == nil || c.MaxFrameSize <= 0 {
		return DEFAULT_MAX_FRAME_SIZE
	}
	return c.MaxFrameSize
}

func (c *TConfiguration) GetMaxRecursionDepth() int32 {
	if c == nil || c.MaxRecursionDepth <= 0 {
		return DEFAULT_MAX_RECURSION_DEPTH
	}
	return c.MaxRecursionDepth
}

func (c *TConfiguration) GetCompactSizeLimit() int32 {
	if c == nil || c.CompactSizeLimit <= 0 {
		return DEFAULT_COMPACT_SIZE_LIMIT
	}
	return c.CompactSizeLimit
}

func (c *TConfiguration) GetConnectTimeout() time.Duration {
	if c == nil {
		return DEFAULT_CONNECT_TIMEOUT
	}
	return c.ConnectTimeout
}

func (c *TConfiguration) GetSocketTimeout() time.Duration {
	if c == nil {
		return DEFAULT_SOCKET_TIMEOUT
	}
	return c.SocketTimeout
}

// TConfigurationCompat7FFF returns a configuration preserving the source's
// narrower 0x7FFF string/container size bound, for deployments that need
// exact wire compatibility with it over the wider default.
func TConfigurationCompat7FFF() *TConfiguration {
	return &TConfiguration{CompactSizeLimit: LEGACY_COMPACT_SIZE_LIMIT}
}

// TConfigurationSetter is implemented by every protocol, factory, and
// transport in this package so a configuration change made at one layer can
// be propagated down the chain it wraps.
type TConfigurationSetter interface {
	SetTConfiguration(*TConfiguration)
}

// PropagateTConfiguration pushes conf onto o if o implements
// TConfigurationSetter, unless conf is nil or has noPropagation set,
// matching the teacher's own propagation guard.
func PropagateTConfiguration(o interface{}, conf *TConfiguration) {
	if conf == nil || conf.noPropagation {
		return
	}
	if setter, ok := o.(TConfigurationSetter); ok {
		setter.SetTConfiguration(conf)
	}
}

// checkSizeForProtocol is the single chokepoint enforcing spec §7's
// SizeLimitExceeded for strings, binaries, and container element counts.
func checkSizeForProtocol(size int32, cfg *TConfiguration) error {
	if size < 0 {
		return NewTProtocolExceptionWithType(NEGATIVE_SIZE, fmt.Errorf("compact protocol: negative size %d", size))
	}
	if limit := cfg.GetCompactSizeLimit(); size > limit {
		return NewTProtocolExceptionWithType(SIZE_LIMIT, fmt.Errorf("compact protocol: size %d exceeds limit %d", size, limit))
	}
	return nil
}
