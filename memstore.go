package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// MemStore is an in-process VarStore.  It backs the controller when no
// external variable service is attached, and the package tests.
//
// Signals are delivered over a buffered channel; when the queue is full the
// oldest signal is dropped so a slow consumer never blocks a writer.
type MemStore struct {
	mu       sync.Mutex
	names    map[string]VarHandle
	vars     []*memVar
	signals  chan Signal
	sessions map[uint32]*memPrintSession
	token    uint32
}

type memVar struct {
	name   string
	value  uint16
	notify map[NotifyKind]bool
}

// NewMemStore creates an empty in-memory variable store.
func NewMemStore() *MemStore {
	return &MemStore{
		names:    map[string]VarHandle{},
		signals:  make(chan Signal, 32),
		sessions: map[uint32]*memPrintSession{},
	}
}

// Add creates a variable with an initial value, replacing any existing value.
func (s *MemStore) Add(name string, v uint16) VarHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.names[name]; ok {
		s.vars[h-1].value = v
		return h
	}
	s.vars = append(s.vars, &memVar{
		name:   name,
		value:  v,
		notify: map[NotifyKind]bool{},
	})
	h := VarHandle(len(s.vars))
	s.names[name] = h
	return h
}

// Seed creates variables from a JSON object of name to value.
func (s *MemStore) Seed(r io.Reader) error {
	var vars map[string]uint16
	if err := json.NewDecoder(r).Decode(&vars); err != nil {
		return fmt.Errorf("cannot parse variable seed: %w", err)
	}
	for name, v := range vars {
		s.Add(name, v)
	}
	return nil
}

// SeedFromFile creates variables from a JSON seed file.
func (s *MemStore) SeedFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.Seed(f)
}

func (s *MemStore) get(h VarHandle) (*memVar, error) {
	if h == VarInvalid || int(h) > len(s.vars) {
		return nil, ErrVariableNotFound
	}
	return s.vars[h-1], nil
}

// FindByName resolves a variable name to its handle.
func (s *MemStore) FindByName(name string) (VarHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.names[name]
	if !ok {
		return VarInvalid, fmt.Errorf("%w: %s", ErrVariableNotFound, name)
	}
	return h, nil
}

// GetUint16 reads the value of a variable.
func (s *MemStore) GetUint16(h VarHandle) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.get(h)
	if err != nil {
		return 0, err
	}
	return v.value, nil
}

// SetUint16 writes the value of a variable.  A modified notification on the
// variable raises a SigModified signal.
func (s *MemStore) SetUint16(h VarHandle, val uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.get(h)
	if err != nil {
		return err
	}
	v.value = val
	if v.notify[NotifyModified] {
		s.push(Signal{Kind: SigModified, Var: h})
	}
	return nil
}

// Notify registers interest in activity on a variable.
func (s *MemStore) Notify(h VarHandle, kind NotifyKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.get(h)
	if err != nil {
		return err
	}
	v.notify[kind] = true
	return nil
}

// ReadRequest emulates a client read of the variable.  A calc notification
// on the variable raises a SigCalc signal so the notifier can refresh it.
func (s *MemStore) ReadRequest(h VarHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.get(h)
	if err != nil {
		return err
	}
	if v.notify[NotifyCalc] {
		s.push(Signal{Kind: SigCalc, Var: h})
	}
	return nil
}

// PrintRequest emulates a client rendering the variable.  It returns the
// token of the print session the notifier will write into, or an error if
// no print notification is registered on the variable.
func (s *MemStore) PrintRequest(h VarHandle) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.get(h)
	if err != nil {
		return 0, err
	}
	if !v.notify[NotifyPrint] {
		return 0, fmt.Errorf("no print notification on %s", v.name)
	}
	s.token++
	token := s.token
	s.sessions[token] = &memPrintSession{done: make(chan struct{})}
	s.push(Signal{Kind: SigPrint, Var: h, Token: token})
	return token, nil
}

// push delivers a signal, dropping the oldest one if the queue is full.
// Callers hold s.mu.
func (s *MemStore) push(sig Signal) {
	select {
	case s.signals <- sig:
	default:
		<-s.signals
		s.signals <- sig
	}
}

// Inject delivers an arbitrary signal, bypassing notification checks.
func (s *MemStore) Inject(sig Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.push(sig)
}

// WaitSignal blocks until a signal is delivered or the context ends.
func (s *MemStore) WaitSignal(ctx context.Context) (Signal, error) {
	select {
	case sig := <-s.signals:
		return sig, nil
	case <-ctx.Done():
		return Signal{}, ctx.Err()
	}
}

// OpenPrintSession opens the writable channel for a print signal token.
func (s *MemStore) OpenPrintSession(token uint32) (PrintSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, fmt.Errorf("no print session for token %d", token)
	}
	return sess, nil
}

// SessionOutput blocks until the print session is closed and returns what
// was written into it.
func (s *MemStore) SessionOutput(token uint32) (string, error) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("no print session for token %d", token)
	}
	<-sess.done
	return sess.buf.String(), nil
}

type memPrintSession struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	done chan struct{}
}

func (p *memPrintSession) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Write(b)
}

func (p *memPrintSession) Close() error {
	close(p.done)
	return nil
}
