package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bluecarbon/registry-api/application/port/outbound"
	"github.com/bluecarbon/registry-api/domain/entity"
	apperror "github.com/bluecarbon/registry-api/domain/error"
	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
)

// feeReserveLamports is the minimum payer balance required before any
// ledger write: 0.01 SOL.
const feeReserveLamports = 10_000_000

// MintUseCase runs the token-issuance pipeline: eligibility, funding,
// mint creation, recipient provisioning, issuance, persistence. Any step
// failure aborts the rest and lands on the failure path; persistence
// failures after the irreversible ledger steps never roll the mint back.
type MintUseCase struct {
	projects outbound.ProjectRepository
	records  outbound.MintRecordRepository
	audits   outbound.AuditLogRepository
	ledger   outbound.Ledger
	recon    *Reconciler
	log      logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMintUseCase(
	projects outbound.ProjectRepository,
	records outbound.MintRecordRepository,
	audits outbound.AuditLogRepository,
	ledger outbound.Ledger,
	recon *Reconciler,
	log logger.Logger,
) *MintUseCase {
	return &MintUseCase{
		projects: projects,
		records:  records,
		audits:   audits,
		ledger:   ledger,
		recon:    recon,
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Mint executes the pipeline for an already-validated request on behalf of
// the given admin. A per-project lock spans eligibility check through
// persistence so at most one mint per project is in flight in this process.
func (uc *MintUseCase) Mint(ctx context.Context, req entity.MintRequest, adminID string) (*entity.MintResult, error) {
	start := time.Now()

	lock := uc.projectLock(req.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	// Step 1: eligibility.
	project, err := uc.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, outbound.ErrProjectNotFound) {
			return nil, uc.fail(ctx, adminID, req, start, apperror.NewNotFound("Project not found"))
		}
		return nil, uc.fail(ctx, adminID, req, start, apperror.NewInternal("Failed to load project", err))
	}
	if !project.MintEligible() {
		return nil, uc.fail(ctx, adminID, req, start,
			apperror.NewInvalidState("Project must be approved before credits can be minted (status: "+project.Status+")"))
	}

	// Step 2: funding.
	balance, err := uc.ledger.GetBalance(ctx, uc.ledger.PayerAddress())
	if err != nil {
		return nil, uc.fail(ctx, adminID, req, start, apperror.NewInternal("Failed to check payer balance", err))
	}
	if balance < feeReserveLamports {
		return nil, uc.fail(ctx, adminID, req, start,
			apperror.NewInsufficientFunds("Payer account has insufficient funds for transaction fees"))
	}

	// Step 3: mint creation.
	mint, err := uc.ledger.CreateMint(ctx, req.Decimals)
	if err != nil {
		return nil, uc.fail(ctx, adminID, req, start, apperror.NewInternal("Mint operation failed", err))
	}

	// Step 4: recipient provisioning.
	destination, err := uc.ledger.CreateOrGetAssociatedAccount(ctx, mint, req.RecipientWallet)
	if err != nil {
		return nil, uc.fail(ctx, adminID, req, start, apperror.NewInternal("Mint operation failed", err))
	}

	// Step 5: issuance.
	amountToMint := req.AmountToMint()
	signature, err := uc.ledger.MintTo(ctx, mint, destination, amountToMint)
	if err != nil {
		return nil, uc.fail(ctx, adminID, req, start, apperror.NewInternal("Mint operation failed", err))
	}

	// Step 6: persistence. The mint is already final on the ledger, so
	// store failures are logged and retried in the background instead of
	// failing the request.
	record := &entity.MintRecord{
		MintAddress: mint,
		ProjectID:   req.ProjectID,
		Recipient:   req.RecipientWallet,
		Amount:      req.Amount,
		Decimals:    req.Decimals,
		Signature:   signature,
		MintedBy:    adminID,
		Status:      entity.MintStatusCompleted,
	}
	uc.persist(ctx, record, amountToMint, start)

	result := &entity.MintResult{
		Mint:           mint,
		Transaction:    signature,
		Amount:         req.Amount,
		Decimals:       req.Decimals,
		Recipient:      req.RecipientWallet,
		ExplorerURL:    uc.ledger.ExplorerURL(signature),
		ProcessingTime: time.Since(start),
	}

	logger.LogPerformance(ctx, uc.log, "mint_tokens", result.ProcessingTime, map[string]interface{}{
		"project_id": req.ProjectID,
		"mint":       mint,
		"signature":  signature,
		"admin_id":   adminID,
	})
	return result, nil
}

func (uc *MintUseCase) persist(ctx context.Context, record *entity.MintRecord, creditsIssued uint64, start time.Time) {
	job := PersistJob{Record: record, CreditsIssued: creditsIssued}

	if err := uc.records.Insert(ctx, record); err != nil {
		uc.log.Error(ctx, "Failed to insert mint record, queued for reconciliation", err, map[string]interface{}{
			"signature": record.Signature,
		})
		job.NeedRecord = true
	}

	if err := uc.projects.MarkMinted(ctx, record.ProjectID, record.MintAddress, creditsIssued); err != nil {
		uc.log.Error(ctx, "Failed to update project after mint, queued for reconciliation", err, map[string]interface{}{
			"project_id": record.ProjectID,
			"signature":  record.Signature,
		})
		job.NeedProject = true
	}

	entry := successLogEntry(record, creditsIssued, time.Since(start))
	if err := uc.audits.Append(ctx, entry); err != nil {
		uc.log.Error(ctx, "Failed to append success admin log entry", err, map[string]interface{}{
			"signature": record.Signature,
		})
		job.NeedAudit = true
	}

	if job.NeedRecord || job.NeedProject || job.NeedAudit {
		uc.recon.Enqueue(ctx, job)
	}
}

// fail appends the failure audit entry and hands back the pipeline error.
// No MintRecord is written on this path.
func (uc *MintUseCase) fail(ctx context.Context, adminID string, req entity.MintRequest, start time.Time, appErr *apperror.AppError) error {
	elapsed := time.Since(start)

	entry := &entity.AdminLogEntry{
		AdminID:    adminID,
		Action:     entity.AuditActionMintFailed,
		TargetType: "project",
		TargetID:   req.ProjectID,
		Details:    appErr.Error(),
		Metadata: map[string]any{
			"recipient":  req.RecipientWallet,
			"amount":     req.Amount,
			"decimals":   req.Decimals,
			"elapsed_ms": elapsed.Milliseconds(),
			"error_code": string(appErr.Code),
		},
	}
	if err := uc.audits.Append(ctx, entry); err != nil {
		uc.log.Error(ctx, "Failed to append failure admin log entry", err, map[string]interface{}{
			"project_id": req.ProjectID,
		})
	}

	uc.log.Error(ctx, "Mint pipeline failed", appErr, map[string]interface{}{
		"project_id": req.ProjectID,
		"admin_id":   adminID,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	return appErr
}

func (uc *MintUseCase) projectLock(projectID string) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	lock, ok := uc.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		uc.locks[projectID] = lock
	}
	return lock
}

func successLogEntry(record *entity.MintRecord, creditsIssued uint64, elapsed time.Duration) *entity.AdminLogEntry {
	return &entity.AdminLogEntry{
		AdminID:    record.MintedBy,
		Action:     entity.AuditActionMintCompleted,
		TargetType: "project",
		TargetID:   record.ProjectID,
		Details:    "Minted " + record.MintAddress + " to " + record.Recipient,
		Metadata: map[string]any{
			"mint":           record.MintAddress,
			"signature":      record.Signature,
			"amount":         record.Amount,
			"decimals":       record.Decimals,
			"credits_issued": creditsIssued,
			"elapsed_ms":     elapsed.Milliseconds(),
		},
	}
}
