package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/bluecarbon/registry-api/application/port/outbound"
	"github.com/bluecarbon/registry-api/domain/entity"
	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
)

// PersistJob is the bookkeeping left over when store writes failed after a
// completed ledger mint. The transaction signature keys the job; each
// remaining step is flagged so retries only redo what failed.
type PersistJob struct {
	Record        *entity.MintRecord
	CreditsIssued uint64
	NeedRecord    bool
	NeedProject   bool
	NeedAudit     bool
	attempts      int
}

// Reconciler retries failed persistence jobs in the background. The ledger
// mint is authoritative, so jobs are retried until the store catches up or
// attempts run out; writes are idempotent on the signature.
type Reconciler struct {
	projects outbound.ProjectRepository
	records  outbound.MintRecordRepository
	audits   outbound.AuditLogRepository
	log      logger.Logger

	jobs        chan PersistJob
	maxAttempts int
	backoff     time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewReconciler(
	projects outbound.ProjectRepository,
	records outbound.MintRecordRepository,
	audits outbound.AuditLogRepository,
	log logger.Logger,
) *Reconciler {
	return &Reconciler{
		projects:    projects,
		records:     records,
		audits:      audits,
		log:         log,
		jobs:        make(chan PersistJob, 64),
		maxAttempts: 5,
		backoff:     2 * time.Second,
		stop:        make(chan struct{}),
	}
}

// Start launches the worker goroutine. Stop drains nothing: pending jobs
// are abandoned on shutdown and surface through the logged discrepancy.
func (r *Reconciler) Start() {
	if r == nil {
		return
	}
	r.wg.Add(1)
	go r.run()
}

func (r *Reconciler) Stop() {
	if r == nil {
		return
	}
	close(r.stop)
	r.wg.Wait()
}

// Enqueue hands a job to the worker without blocking the request path. A
// full queue drops the job; the earlier error logs still record the
// discrepancy for manual reconciliation.
func (r *Reconciler) Enqueue(ctx context.Context, job PersistJob) bool {
	if r == nil {
		return false
	}
	select {
	case r.jobs <- job:
		return true
	default:
		r.log.Error(ctx, "Reconciliation queue full, dropping job", nil, map[string]interface{}{
			"signature": job.Record.Signature,
		})
		return false
	}
}

func (r *Reconciler) run() {
	defer r.wg.Done()
	for {
		select {
		case <-r.stop:
			return
		case job := <-r.jobs:
			r.process(job)
		}
	}
}

func (r *Reconciler) process(job PersistJob) {
	ctx := context.Background()

	if job.NeedRecord {
		if err := r.records.Insert(ctx, job.Record); err == nil {
			job.NeedRecord = false
		}
	}
	if job.NeedProject {
		if err := r.projects.MarkMinted(ctx, job.Record.ProjectID, job.Record.MintAddress, job.CreditsIssued); err == nil {
			job.NeedProject = false
		}
	}
	if job.NeedAudit {
		if err := r.audits.Append(ctx, successLogEntry(job.Record, job.CreditsIssued, 0)); err == nil {
			job.NeedAudit = false
		}
	}

	if !job.NeedRecord && !job.NeedProject && !job.NeedAudit {
		r.log.Info(ctx, "Reconciled mint bookkeeping", map[string]interface{}{
			"signature": job.Record.Signature,
		})
		return
	}

	job.attempts++
	if job.attempts >= r.maxAttempts {
		r.log.Error(ctx, "Giving up on mint bookkeeping reconciliation", nil, map[string]interface{}{
			"signature":    job.Record.Signature,
			"need_record":  job.NeedRecord,
			"need_project": job.NeedProject,
			"need_audit":   job.NeedAudit,
		})
		return
	}

	select {
	case <-r.stop:
	case <-time.After(r.backoff * time.Duration(job.attempts)):
		r.Enqueue(ctx, job)
	}
}
