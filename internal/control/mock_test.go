package control

import (
	"errors"
	"sync"
	"time"
)

// fakeOutput records every level written to it.
type fakeOutput struct {
	mu     sync.Mutex
	level  bool
	writes []bool
	fail   bool
}

func (o *fakeOutput) Set(on bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail {
		return errors.New("fake: line stuck")
	}
	o.level = on
	o.writes = append(o.writes, on)
	return nil
}

func (o *fakeOutput) String() string { return "fake" }

func (o *fakeOutput) Level() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.level
}

func (o *fakeOutput) Writes() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.writes)
}

// fakeNotifier records characteristic writes (value update + notify).
type fakeNotifier struct {
	mu    sync.Mutex
	value []byte
	sent  []string
	fail  bool
}

func (n *fakeNotifier) Write(p []byte) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return 0, errors.New("fake: not subscribed")
	}
	n.value = append([]byte(nil), p...)
	n.sent = append(n.sent, string(p))
	return len(p), nil
}

func (n *fakeNotifier) Sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

// fakeAdvertiser records when Start was called.
type fakeAdvertiser struct {
	mu     sync.Mutex
	starts []time.Time
	err    error
}

func (a *fakeAdvertiser) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.starts = append(a.starts, time.Now())
	return a.err
}

func (a *fakeAdvertiser) Starts() []time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]time.Time(nil), a.starts...)
}
