package scan

import "sync"

// queue holds directories waiting to be expanded and tracks how many
// workers are busy with one. An empty queue with a busy worker is only
// transiently empty: that worker may still push subdirectories.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []string
	active int
	closed bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)

	return q
}

// push adds directories to the queue and wakes waiting workers.
func (q *queue) push(dirs ...string) {
	if len(dirs) == 0 {
		return
	}

	q.mu.Lock()
	q.tasks = append(q.tasks, dirs...)
	q.mu.Unlock()

	q.cond.Broadcast()
}

// pop hands out the next directory and marks the caller active.
// It blocks while the queue is empty and another worker is active, and
// returns false once the queue is empty with no active worker, or after close.
func (q *queue) pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.tasks) == 0 && q.active > 0 && !q.closed {
		q.cond.Wait()
	}

	if q.closed || len(q.tasks) == 0 {
		return "", false
	}

	last := len(q.tasks) - 1
	dir := q.tasks[last]
	q.tasks[last] = ""
	q.tasks = q.tasks[:last]
	q.active++

	return dir, true
}

// done marks the end of a task popped earlier. Its subdirectories must have
// been pushed before, so that active and queued work never both read zero
// while work remains.
func (q *queue) done() {
	q.mu.Lock()
	q.active--
	drained := q.active == 0 && len(q.tasks) == 0
	q.mu.Unlock()

	if drained {
		q.cond.Broadcast()
	}
}

// close releases every waiting worker. Tasks still queued are dropped.
func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.cond.Broadcast()
}

// abort hands back a popped directory that will not be expanded and closes
// the queue.
func (q *queue) abort(dir string) {
	q.mu.Lock()
	q.tasks = append(q.tasks, dir)
	q.active--
	q.closed = true
	q.mu.Unlock()

	q.cond.Broadcast()
}

// pending returns the number of directories never expanded. After all
// workers have returned it is non-zero only if the queue was cut short.
func (q *queue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}
