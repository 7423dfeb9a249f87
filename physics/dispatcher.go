package physics

import (
	"sync"
)

// Dispatcher runs simulation tasks on a fixed pool of worker goroutines.
type Dispatcher struct {
	foundation *Foundation
	tasks      chan func()
	wg         sync.WaitGroup
	workers    int

	mu       sync.Mutex
	users    int
	released bool
}

// NewDispatcher starts workers goroutines. A non-positive count starts one.
func NewDispatcher(f *Foundation, workers int) (*Dispatcher, error) {
	if f == nil || f.Released() {
		return nil, ErrReleased
	}
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		foundation: f,
		tasks:      make(chan func()),
		workers:    workers,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	f.Track(KindDispatcher)
	return d, nil
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for task := range d.tasks {
		task()
	}
}

// Workers returns the pool size.
func (d *Dispatcher) Workers() int { return d.workers }

// Run queues tasks and returns a channel closed once all of them finish.
func (d *Dispatcher) Run(tasks ...func()) <-chan struct{} {
	done := make(chan struct{})
	var pending sync.WaitGroup
	pending.Add(len(tasks))
	go func() {
		for _, task := range tasks {
			task := task
			d.tasks <- func() {
				defer pending.Done()
				task()
			}
		}
		pending.Wait()
		close(done)
	}()
	return done
}

func (d *Dispatcher) addUser() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return ErrReleased
	}
	d.users++
	return nil
}

func (d *Dispatcher) removeUser() {
	d.mu.Lock()
	d.users--
	d.mu.Unlock()
}

// Release stops the workers. Scenes using the dispatcher must be released
// first.
func (d *Dispatcher) Release() error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	if d.released {
		d.mu.Unlock()
		return ErrReleased
	}
	if d.users > 0 {
		d.mu.Unlock()
		return ErrDependentsAlive
	}
	d.released = true
	d.mu.Unlock()

	close(d.tasks)
	d.wg.Wait()
	d.foundation.Untrack(KindDispatcher)
	return nil
}
