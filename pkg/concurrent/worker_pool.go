package concurrent

import (
	"sync"
)

// WorkerPool runs a fixed number of goroutines over a buffered job queue.
// Jobs may be added before Start; results are buffered so Wait can be called
// before CollectResults.
type WorkerPool[T JobI, G any] struct {
	numWorkers int
	jobQueue   chan Job[T]
	results    chan G
	wg         sync.WaitGroup
	jobCount   int
}

func NewWorkerPool[T JobI, G any](numWorkers, numJobs int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job[T], numJobs),
		results:    make(chan G, numJobs),
	}
}

func (wp *WorkerPool[T, G]) AddJob(jobItem T) {
	wp.jobQueue <- Job[T]{ID: wp.jobCount, JobItem: jobItem}
	wp.jobCount++
}

// Close signals that no more jobs will be added.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

func (wp *WorkerPool[T, G]) Start(handler JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(handler)
	}
}

func (wp *WorkerPool[T, G]) worker(handler JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- handler(job.JobItem)
	}
}

// Wait blocks until every worker finished and closes the result channel.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) CollectResults() <-chan G {
	return wp.results
}
