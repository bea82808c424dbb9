package shortlink

import (
	"context"
	"sync"
)

type fakeStore struct {
	mu      sync.Mutex
	records map[string]*Record
	getErr  error
	putErr  error
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*Record)}
}

func (s *fakeStore) Get(_ context.Context, code string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	rec, ok := s.records[code]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (s *fakeStore) Put(_ context.Context, rec *Record, opts PutOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	if _, ok := s.records[rec.Code]; ok && !opts.Overwrite {
		return ErrCodeTaken
	}
	s.records[rec.Code] = rec.Clone()
	return nil
}

// seqGenerator returns codes in order and repeats the last one.
type seqGenerator struct {
	codes []string
	calls int
}

func (g *seqGenerator) Generate() (string, error) {
	i := g.calls
	if i >= len(g.codes) {
		i = len(g.codes) - 1
	}
	g.calls++
	return g.codes[i], nil
}

type signCall struct {
	ref       string
	expiresAt int64
}

type stubSigner struct {
	url   string
	err   error
	calls []signCall
}

func (s *stubSigner) Sign(_ context.Context, ref string, expiresAt int64) (string, error) {
	s.calls = append(s.calls, signCall{ref: ref, expiresAt: expiresAt})
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []LinkCreated
}

func (p *recordingPublisher) Publish(e LinkCreated) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

type setFilter map[string]bool

func (f setFilter) Add(code string)             { f[code] = true }
func (f setFilter) MightExist(code string) bool { return f[code] }

type alwaysFilter struct{}

func (alwaysFilter) Add(string)             {}
func (alwaysFilter) MightExist(string) bool { return true }
