package server

import (
	"sync"

	"github.com/ayusman/mudra/internal/app"
)

// fakeFeed is an in-memory Feed.
type fakeFeed struct {
	mu     sync.Mutex
	latest *app.Snapshot
	subs   []func(app.Snapshot)
}

func (f *fakeFeed) Latest() (app.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		return app.Snapshot{}, false
	}
	return *f.latest, true
}

func (f *fakeFeed) Subscribe(fn func(app.Snapshot)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
}

func (f *fakeFeed) publish(s app.Snapshot) {
	f.mu.Lock()
	f.latest = &s
	subs := f.subs
	f.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
