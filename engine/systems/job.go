package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/screenfx/engine/core"
)

// JobTask is a unit of work run on a worker. OnFailure is optional.
type JobTask struct {
	OnStart   func() error
	OnFailure func(err error)
	// called once the task finished, whatever the outcome
	OnCompletionCallback func()
}

// JobSystem is a fixed pool of workers. The software backend spreads its
// per-line pixel work over it.
type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	if job.OnCompletionCallback != nil {
		defer job.OnCompletionCallback()
	}
	err := protect(job.OnStart)
	if err == nil {
		return
	}
	core.LogError(err.Error())
	if job.OnFailure != nil {
		job.OnFailure(err)
	}
}

func (js *JobSystem) Workers() int {
	return js.numWorkers
}

/**
 * @brief Shuts the job system down. Queued jobs still run.
 */
func (js *JobSystem) Shutdown() error {
	js.closeOnce.Do(func() {
		close(js.jobQueue)
		js.wg.Wait()
	})
	return nil
}

/**
 * @brief Submits the provided job to be queued for execution.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) {
	js.jobQueue <- jt
}

// ParallelFor calls fn for every index in [0, n) spread over the workers and
// returns once all calls returned. It must not be called from a job.
func (js *JobSystem) ParallelFor(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	chunks := min(js.numWorkers, n)
	size := (n + chunks - 1) / chunks

	var done sync.WaitGroup
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		done.Add(1)
		from := start
		js.Submit(JobTask{
			OnStart: func() error {
				for i := from; i < end; i++ {
					fn(i)
				}
				return nil
			},
			OnCompletionCallback: done.Done,
		})
	}
	done.Wait()
}
