// Package jobs provides thread-safe tracking of in-flight boomerang
// conversions for the web service. The registry is the only structure
// mutated by concurrent job lifecycles.
package jobs

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mantonx/boomerang/internal/pipeline"
)

// Conn is the live observer connection a job pushes progress to.
// *websocket.Conn wrapped for serialized writes satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
}

// Job ties a generated identifier to one pipeline instance and one
// observer connection.
type Job struct {
	ID        string
	FileName  string
	Processor *pipeline.Processor
	Conn      Conn
}

// Registry maps job identifiers to active jobs. Insertion happens at job
// acceptance, deletion exactly once at terminal outcome or observer
// disconnect; both paths are idempotent.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Add registers a new job under a fresh UUID and returns it. Identifiers
// are never reused.
func (r *Registry) Add(fileName string, proc *pipeline.Processor, conn Conn) *Job {
	job := &Job{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Processor: proc,
		Conn:      conn,
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	return job
}

// Get looks up a job by identifier.
func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}

// Remove deregisters a job. Removing an absent identifier is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.jobs, id)
	r.mu.Unlock()
}

// RemoveByConn deregisters every job bound to the given connection and
// returns their identifiers. Used when an observer disconnects.
func (r *Registry) RemoveByConn(conn Conn) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, job := range r.jobs {
		if job.Conn == conn {
			delete(r.jobs, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Count reports the number of tracked jobs.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
