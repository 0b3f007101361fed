package worker

import (
	"log"
	"sync"
	"time"

	facore "github.com/xhn-ccc/fat-analysis-tool"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/models"
)

// ProcessorFunc runs one sample through the identification pipeline.
type ProcessorFunc func(sample facore.Sample, params *models.Params) (facore.SampleResult, facore.Outcome)

// WebhookSender publishes one finished result.
type WebhookSender func(item models.WebhookItem) error

// Pool manages concurrent sample identification workers plus an async
// webhook publisher.
type Pool struct {
	jobs         chan models.WorkItem
	results      chan models.WorkResult
	webhookQueue chan models.WebhookItem
	workers      int
	shutdown     chan struct{}
	wg           sync.WaitGroup
	processor    ProcessorFunc
	sender       WebhookSender
	quiet        bool
}

// Options holds configuration for creating a new worker pool.
type Options struct {
	Workers   int
	Processor ProcessorFunc
	Sender    WebhookSender // nil disables webhook publication
	Quiet     bool
}

// New creates and starts a worker pool.
func New(opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 5
	}

	// Buffers sized so queueing stays ahead of busy workers; webhooks
	// get extra room since the remote end is slower than we are.
	pool := &Pool{
		jobs:         make(chan models.WorkItem, opts.Workers*2),
		results:      make(chan models.WorkResult, opts.Workers*2),
		webhookQueue: make(chan models.WebhookItem, opts.Workers*4),
		workers:      opts.Workers,
		shutdown:     make(chan struct{}),
		processor:    opts.Processor,
		sender:       opts.Sender,
		quiet:        opts.Quiet,
	}
	pool.start()
	return pool
}

func (p *Pool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.wg.Add(1)
	go p.webhookProcessor()

	if !p.quiet {
		log.Printf("worker pool started with %d workers", p.workers)
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobs:
			p.results <- p.processJob(job)
		case <-p.shutdown:
			return
		}
	}
}

func (p *Pool) processJob(job models.WorkItem) models.WorkResult {
	start := time.Now()
	result, outcome := p.processor(job.Sample, job.Params)
	elapsed := time.Since(start)

	return models.WorkResult{
		RequestID:      job.RequestID,
		Result:         result,
		Outcome:        outcome,
		ProcessingTime: elapsed,
		Success:        outcome.Status != facore.StatusError,
	}
}

func (p *Pool) webhookProcessor() {
	defer p.wg.Done()
	for {
		select {
		case item := <-p.webhookQueue:
			if p.sender == nil {
				continue
			}
			// Publish off the worker path so a slow endpoint cannot
			// stall identification.
			go func(item models.WebhookItem) {
				if err := p.sender(item); err != nil {
					log.Printf("webhook publish failed for %s: %v", item.RequestID, err)
				}
			}(item)
		case <-p.shutdown:
			return
		}
	}
}

// SubmitJob queues a job, blocking once the buffer is full.
func (p *Pool) SubmitJob(job models.WorkItem) {
	select {
	case p.jobs <- job:
	default:
		if !p.quiet {
			log.Printf("worker pool jobs channel full, job %s delayed", job.RequestID)
		}
		p.jobs <- job
	}
}

// Results exposes the finished-work channel for a consumer loop.
func (p *Pool) Results() <-chan models.WorkResult {
	return p.results
}

// GetResult retrieves a result without blocking.
func (p *Pool) GetResult() (models.WorkResult, bool) {
	select {
	case result := <-p.results:
		return result, true
	default:
		return models.WorkResult{}, false
	}
}

// QueueWebhook queues a result publication, dropping it when the queue
// is saturated.
func (p *Pool) QueueWebhook(item models.WebhookItem) {
	select {
	case p.webhookQueue <- item:
	default:
		log.Printf("webhook queue full, dropping publication for %s", item.RequestID)
	}
}

// Shutdown stops all workers and waits for them to exit.
func (p *Pool) Shutdown() {
	close(p.shutdown)
	p.wg.Wait()
	if !p.quiet {
		log.Printf("worker pool shutdown complete")
	}
}
