// Copyright 2025 The Outline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dtlsmutate

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/Jigsaw-Code/tlsmutate/extfilter"
	"github.com/Jigsaw-Code/tlsmutate/transport"
)

type mutateDialer struct {
	dialer transport.PacketDialer
	filter extfilter.Filter
}

var _ transport.PacketDialer = (*mutateDialer)(nil)

// NewPacketDialer creates a [transport.PacketDialer] whose connections pass every plaintext handshake message they
// send through filter.
func NewPacketDialer(base transport.PacketDialer, filter extfilter.Filter) (transport.PacketDialer, error) {
	if base == nil {
		return nil, errors.New("base dialer must not be nil")
	}
	if filter == nil {
		return nil, errors.New("filter must not be nil")
	}
	return &mutateDialer{dialer: base, filter: filter}, nil
}

// DialPacket implements [transport.PacketDialer].DialPacket.
func (d *mutateDialer) DialPacket(ctx context.Context, raddr string) (net.Conn, error) {
	innerConn, err := d.dialer.DialPacket(ctx, raddr)
	if err != nil {
		return nil, err
	}
	conn, err := WrapConn(innerConn, d.filter)
	if err != nil {
		innerConn.Close()
		return nil, fmt.Errorf("failed to wrap connection: %w", err)
	}
	return conn, nil
}
