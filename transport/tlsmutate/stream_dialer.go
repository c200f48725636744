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

package tlsmutate

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jigsaw-Code/tlsmutate/extfilter"
	"github.com/Jigsaw-Code/tlsmutate/transport"
)

type mutateDialer struct {
	dialer transport.StreamDialer
	filter extfilter.Filter
}

var _ transport.StreamDialer = (*mutateDialer)(nil)

// NewStreamDialer creates a [transport.StreamDialer] whose connections pass every plaintext handshake message they
// send through filter.
func NewStreamDialer(base transport.StreamDialer, filter extfilter.Filter) (transport.StreamDialer, error) {
	if base == nil {
		return nil, errors.New("base dialer must not be nil")
	}
	if filter == nil {
		return nil, errors.New("filter must not be nil")
	}
	return &mutateDialer{dialer: base, filter: filter}, nil
}

// DialStream implements [transport.StreamDialer].DialStream.
func (d *mutateDialer) DialStream(ctx context.Context, raddr string) (transport.StreamConn, error) {
	innerConn, err := d.dialer.DialStream(ctx, raddr)
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

// WrapConn wraps base so that the handshake messages written to it are filtered. Reads are not affected. It can
// wrap either end of a connection, so a server can mutate its ServerHello the same way a client mutates its
// ClientHello.
func WrapConn(base transport.StreamConn, filter extfilter.Filter) (transport.StreamConn, error) {
	w, err := newMutateWriter(base, filter)
	if err != nil {
		return nil, err
	}
	return transport.WrapConn(base, base, w), nil
}
