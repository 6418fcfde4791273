/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package bridge

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fxamacker/cbor/v2"

	"dirpx.dev/pxr/logging"
	"dirpx.dev/pxr/proxy"
)

// Transport carries one encoded request to a server and returns the encoded
// response. Framing and delivery are the transport's concern.
type Transport interface {
	RoundTrip(ctx context.Context, req []byte) ([]byte, error)
}

// Server executes bridge requests against an inner environment. It holds
// the inner proxies for every handle issued to clients until they are
// released or the server is closed. Server is itself an in-process
// Transport.
type Server struct {
	inner proxy.Environment
	log   logging.Logger

	mu      sync.Mutex
	handles map[uint64]*held
	closed  atomic.Bool
}

// held is an inner proxy with the number of client proxies issued for it.
type held struct {
	p    proxy.Proxy
	refs int
}

var _ Transport = (*Server)(nil)

// NewServer serves inner.
func NewServer(inner proxy.Environment, log logging.Logger) *Server {
	if log == nil {
		log = logging.Default()
	}
	return &Server{inner: inner, log: log, handles: map[uint64]*held{}}
}

// Inner returns the served environment.
func (s *Server) Inner() proxy.Environment { return s.inner }

// Close drops every held handle. Later requests fail with an expired error.
// The inner environment is left open.
func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.mu.Lock()
	n := len(s.handles)
	clear(s.handles)
	s.mu.Unlock()
	s.log.Debug("bridge.server.close", "env", s.inner.ID(), "handles", n)
	return nil
}

// RoundTrip decodes req, executes it and encodes the response. Only a
// malformed request is reported as a transport error.
func (s *Server) RoundTrip(ctx context.Context, req []byte) ([]byte, error) {
	var r request
	if err := cbor.Unmarshal(req, &r); err != nil {
		return nil, fmt.Errorf("pxr(bridge): decode request: %w", err)
	}
	resp := s.serve(ctx, &r)
	return encMode.Marshal(resp)
}

func (s *Server) serve(ctx context.Context, r *request) *response {
	if s.closed.Load() || s.inner.Expired() {
		return &response{Err: &wireError{Kind: kindExpired}}
	}
	resp, err := s.exec(ctx, r)
	if err != nil {
		if logging.Enabled(s.log, logging.LogLevelDebug) {
			s.log.Debug("bridge.server.error", "op", r.Op, "name", r.Name, "error", err)
		}
		return &response{Err: toWire(err)}
	}
	return resp
}

func (s *Server) exec(ctx context.Context, r *request) (*response, error) {
	switch r.Op {
	case opMake:
		if len(r.Args) != 1 {
			return nil, fmt.Errorf("pxr(bridge): make takes one value, got %d", len(r.Args))
		}
		arg, err := s.arg(r.Args[0])
		if err != nil {
			return nil, err
		}
		p, err := s.inner.MakeProxy(arg)
		if err != nil {
			return nil, err
		}
		return &response{Handle: s.keep(p)}, nil

	case opCall:
		p, err := s.lookup(r.Handle)
		if err != nil {
			return nil, err
		}
		args := make([]any, len(r.Args))
		for i, a := range r.Args {
			if args[i], err = s.arg(a); err != nil {
				return nil, fmt.Errorf("pxr(bridge): argument %d: %w", i, err)
			}
		}
		res, err := p.CallContext(ctx, r.Name, args...)
		if err != nil {
			return nil, err
		}
		return &response{Handle: s.keep(res)}, nil

	case opFind:
		p, err := s.inner.FindProxy(r.Name)
		if err != nil {
			return nil, err
		}
		return &response{Handle: s.keep(p)}, nil

	case opFetch:
		p, err := s.lookup(r.Handle)
		if err != nil {
			return nil, err
		}
		o, err := p.ToObject()
		if err != nil {
			return nil, err
		}
		v, err := encode(o)
		if err != nil {
			return nil, err
		}
		return &response{Value: &v}, nil

	case opStat:
		p, err := s.lookup(r.Handle)
		if err != nil {
			return nil, err
		}
		h, err := s.inner.Handle(p.HandleID())
		if err != nil {
			return nil, err
		}
		return &response{Type: h.TypeName(), ObjectID: h.ObjectID()}, nil

	case opRelease:
		s.mu.Lock()
		if h, ok := s.handles[r.Handle]; ok {
			if h.refs--; h.refs <= 0 {
				delete(s.handles, r.Handle)
			}
		}
		s.mu.Unlock()
		return &response{}, nil

	case opLen:
		s.mu.Lock()
		n := len(s.handles)
		s.mu.Unlock()
		return &response{Len: n}, nil
	}
	return nil, fmt.Errorf("pxr(bridge): unknown op %q", r.Op)
}

// arg turns a wire value into a call argument: a held proxy for a
// reference, a decoded Object otherwise.
func (s *Server) arg(v value) (any, error) {
	if v.Ref != 0 {
		return s.lookup(v.Ref)
	}
	return decode(v)
}

// keep holds p for one more client proxy. The null proxy is handle 0 and
// is not held.
func (s *Server) keep(p proxy.Proxy) uint64 {
	if p.IsNull() {
		return 0
	}
	id := uint64(p.HandleID())
	s.mu.Lock()
	if h, ok := s.handles[id]; ok {
		h.refs++
	} else {
		s.handles[id] = &held{p: p, refs: 1}
	}
	s.mu.Unlock()
	return id
}

func (s *Server) lookup(id uint64) (proxy.Proxy, error) {
	s.mu.Lock()
	h, ok := s.handles[id]
	s.mu.Unlock()
	if !ok {
		return proxy.Proxy{}, fmt.Errorf("%w: %d", proxy.ErrInvalidHandle, id)
	}
	return h.p, nil
}
