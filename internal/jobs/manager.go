// Package jobs records the stages of a training run: when each started and
// finished, how it ended and what it logged along the way.
package jobs

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

type Job struct {
	ID          string
	Type        string
	Status      JobStatus
	StartTime   time.Time
	EndTime     *time.Time
	Error       error
	Description string
	Logs        []string
}

// Manager keeps the jobs of one run in creation order.
type Manager struct {
	jobs  []*Job
	byID  map[string]*Job
	clock func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		byID:  make(map[string]*Job),
		clock: time.Now,
	}
}

func (m *Manager) CreateJob(jobType, description string) *Job {
	job := &Job{
		ID:          fmt.Sprintf("job_%02d_%s", len(m.jobs)+1, jobType),
		Type:        jobType,
		Status:      JobPending,
		Description: description,
	}

	m.jobs = append(m.jobs, job)
	m.byID[job.ID] = job
	return job
}

// Start creates a job and marks it running.
func (m *Manager) Start(jobType, description string) *Job {
	job := m.CreateJob(jobType, description)
	job.StartTime = m.clock()
	job.Status = JobRunning
	return job
}

// Finish ends a running job, failed when err is non-nil, and returns err
// unchanged.
func (m *Manager) Finish(job *Job, err error) error {
	now := m.clock()
	job.EndTime = &now
	if err != nil {
		job.Error = err
		job.Status = JobFailed
		return err
	}
	job.Status = JobCompleted
	return nil
}

func (m *Manager) GetJob(jobID string) (*Job, bool) {
	job, exists := m.byID[jobID]
	return job, exists
}

func (m *Manager) ListJobs() []*Job {
	jobs := make([]*Job, len(m.jobs))
	copy(jobs, m.jobs)
	return jobs
}

// Failed returns the first failed job, if any.
func (m *Manager) Failed() (*Job, bool) {
	for _, job := range m.jobs {
		if job.Status == JobFailed {
			return job, true
		}
	}
	return nil, false
}

func (j *Job) AddLog(format string, args ...any) {
	timestamp := time.Now().Format("15:04:05")
	j.Logs = append(j.Logs, fmt.Sprintf("[%s] %s", timestamp, fmt.Sprintf(format, args...)))
}

// Duration is the time between start and end, or zero while the job has
// not finished.
func (j *Job) Duration() time.Duration {
	if j.EndTime == nil || j.StartTime.IsZero() {
		return 0
	}
	return j.EndTime.Sub(j.StartTime)
}
