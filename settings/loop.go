package settings

import "context"

// Dispatcher hands a callback to the event loop that owns a grid. Every
// inbound message and every view event of one SettingsGrid must go through
// the same dispatcher so they run one at a time.
type Dispatcher func(fn func())

// Inline runs fn on the calling goroutine.
func Inline(fn func()) { fn() }

// Loop is a single goroutine event loop for grids that have no UI loop of
// their own.
type Loop struct {
	tasks chan func()
	done  chan struct{}
}

func NewLoop(queue int) *Loop {
	return &Loop{tasks: make(chan func(), queue), done: make(chan struct{})}
}

// Post queues fn. It blocks while the queue is full and drops fn once the loop
// has stopped. Posting from inside the loop with a full queue deadlocks.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// Do posts fn and waits for it to run. It returns false if the loop stopped
// first.
func (l *Loop) Do(fn func()) bool {
	ran := make(chan struct{})
	l.Post(func() {
		fn()
		close(ran)
	})
	select {
	case <-ran:
		return true
	case <-l.done:
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Run executes queued callbacks in order until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}
