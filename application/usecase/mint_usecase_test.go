package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarbon/registry-api/application/port/outbound"
	"github.com/bluecarbon/registry-api/domain/entity"
	apperror "github.com/bluecarbon/registry-api/domain/error"
	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
)

const (
	testProjectID = "a2f5c8e4-7d3b-4a1e-9f6c-2b8d4e0a1c3f"
	testRecipient = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	testAdminID   = "admin-1"
	testMint      = "DRpbCBMxVnDK7maPM5tGv6MvB3v1sRMC86PZ8okm21hy"
	testSignature = "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"
)

// Stateful fakes: MarkMinted flips the stored project status so a second
// mint attempt observes the state change, matching the store's behavior.

type fakeProjects struct {
	mu       sync.Mutex
	projects map[string]*entity.Project
	getErr   error
	markErr  error
}

func (f *fakeProjects) GetByID(_ context.Context, id string) (*entity.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.projects[id]
	if !ok {
		return nil, outbound.ErrProjectNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProjects) MarkMinted(_ context.Context, id, mintAddress string, creditsIssued uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	p, ok := f.projects[id]
	if !ok {
		return outbound.ErrProjectNotFound
	}
	p.MintAddress = mintAddress
	p.Status = entity.ProjectStatusCreditsMinted
	p.CreditsIssued = int64(creditsIssued)
	return nil
}

type fakeRecords struct {
	mu        sync.Mutex
	inserted  []*entity.MintRecord
	insertErr error
}

func (f *fakeRecords) Insert(_ context.Context, record *entity.MintRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, record)
	return nil
}

type fakeAudits struct {
	mu      sync.Mutex
	entries []*entity.AdminLogEntry
}

func (f *fakeAudits) Append(_ context.Context, entry *entity.AdminLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudits) byAction(action string) []*entity.AdminLogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.AdminLogEntry
	for _, e := range f.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type fakeLedger struct {
	mu            sync.Mutex
	balance       uint64
	balanceErr    error
	createMintErr error
	ataErr        error
	mintToErr     error

	createMintCalls int
	mintedAmount    uint64
}

func (f *fakeLedger) GetBalance(context.Context, string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, f.balanceErr
}

func (f *fakeLedger) CreateMint(context.Context, uint8) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createMintCalls++
	if f.createMintErr != nil {
		return "", f.createMintErr
	}
	return testMint, nil
}

func (f *fakeLedger) CreateOrGetAssociatedAccount(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ataErr != nil {
		return "", f.ataErr
	}
	return "ATA" + testRecipient[3:], nil
}

func (f *fakeLedger) MintTo(_ context.Context, _, _ string, amount uint64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mintToErr != nil {
		return "", f.mintToErr
	}
	f.mintedAmount = amount
	return testSignature, nil
}

func (f *fakeLedger) PayerAddress() string {
	return "payer"
}

func (f *fakeLedger) ExplorerURL(signature string) string {
	return "https://explorer.solana.com/tx/" + signature + "?cluster=devnet"
}

type fixture struct {
	projects *fakeProjects
	records  *fakeRecords
	audits   *fakeAudits
	ledger   *fakeLedger
	uc       *MintUseCase
}

func newFixture(status string) *fixture {
	projects := &fakeProjects{projects: map[string]*entity.Project{
		testProjectID: {ID: testProjectID, Name: "Mangrove Delta", Status: status, CalculatedCredits: 100},
	}}
	records := &fakeRecords{}
	audits := &fakeAudits{}
	ledger := &fakeLedger{balance: 1_000_000_000}
	log := logger.New(logger.Config{Level: "error", ServiceName: "test"})
	recon := NewReconciler(projects, records, audits, log)

	return &fixture{
		projects: projects,
		records:  records,
		audits:   audits,
		ledger:   ledger,
		uc:       NewMintUseCase(projects, records, audits, ledger, recon, log),
	}
}

func mintReq() entity.MintRequest {
	return entity.MintRequest{
		ProjectID:       testProjectID,
		RecipientWallet: testRecipient,
		Amount:          100,
		Decimals:        2,
	}
}

func TestMint_ProjectNotFound(t *testing.T) {
	f := newFixture(entity.ProjectStatusApproved)

	req := mintReq()
	req.ProjectID = "b3e6d9f5-8e4c-4b2f-a07d-3c9e5f1b2d4a"
	_, err := f.uc.Mint(context.Background(), req, testAdminID)

	appErr := apperror.Map(err)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
	assert.Zero(t, f.ledger.createMintCalls)
	assert.Empty(t, f.records.inserted)
}

func TestMint_PendingProjectIsInvalidState(t *testing.T) {
	f := newFixture(entity.ProjectStatusPending)

	_, err := f.uc.Mint(context.Background(), mintReq(), testAdminID)

	appErr := apperror.Map(err)
	assert.Equal(t, apperror.CodeInvalidState, appErr.Code)

	// No ledger step ran, no MintRecord was written, and no success
	// audit entry exists; only the failure entry records the attempt.
	assert.Zero(t, f.ledger.createMintCalls)
	assert.Empty(t, f.records.inserted)
	assert.Empty(t, f.audits.byAction(entity.AuditActionMintCompleted))

	failures := f.audits.byAction(entity.AuditActionMintFailed)
	require.Len(t, failures, 1)
	assert.Equal(t, testAdminID, failures[0].AdminID)
	assert.Contains(t, failures[0].Metadata, "elapsed_ms")
}

func TestMint_InsufficientFunds(t *testing.T) {
	f := newFixture(entity.ProjectStatusApproved)
	f.ledger.balance = 9_999_999

	_, err := f.uc.Mint(context.Background(), mintReq(), testAdminID)

	appErr := apperror.Map(err)
	assert.Equal(t, apperror.CodeInsufficientFunds, appErr.Code)
	assert.Zero(t, f.ledger.createMintCalls)
	assert.Empty(t, f.records.inserted)
}

func TestMint_HappyPath(t *testing.T) {
	f := newFixture(entity.ProjectStatusApproved)

	result, err := f.uc.Mint(context.Background(), mintReq(), testAdminID)
	require.NoError(t, err)

	assert.Equal(t, testMint, result.Mint)
	assert.Equal(t, testSignature, result.Transaction)
	assert.Equal(t, uint64(100), result.Amount)
	assert.Equal(t, uint8(2), result.Decimals)
	assert.Equal(t, testRecipient, result.Recipient)
	assert.Contains(t, result.ExplorerURL, testSignature)

	// amount × 10^decimals reached the ledger.
	assert.Equal(t, uint64(10_000), f.ledger.mintedAmount)

	require.Len(t, f.records.inserted, 1)
	record := f.records.inserted[0]
	assert.Equal(t, entity.MintStatusCompleted, record.Status)
	assert.Equal(t, testAdminID, record.MintedBy)
	assert.Equal(t, testSignature, record.Signature)

	project, _ := f.projects.GetByID(context.Background(), testProjectID)
	assert.Equal(t, entity.ProjectStatusCreditsMinted, project.Status)
	assert.Equal(t, testMint, project.MintAddress)
	assert.Equal(t, int64(10_000), project.CreditsIssued)

	assert.Len(t, f.audits.byAction(entity.AuditActionMintCompleted), 1)
	assert.Empty(t, f.audits.byAction(entity.AuditActionMintFailed))
}

func TestMint_IssuanceFailureAfterProvisioning(t *testing.T) {
	f := newFixture(entity.ProjectStatusApproved)
	f.ledger.mintToErr = errors.New("blockhash not found")

	_, err := f.uc.Mint(context.Background(), mintReq(), testAdminID)

	appErr := apperror.Map(err)
	assert.Equal(t, apperror.CodeInternal, appErr.Code)
	assert.Equal(t, "Mint operation failed", appErr.Message)

	// The mint and token account already exist on the ledger, but no
	// MintRecord is written; the failure audit entry carries the error.
	assert.Empty(t, f.records.inserted)
	failures := f.audits.byAction(entity.AuditActionMintFailed)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Details, "Mint operation failed")

	project, _ := f.projects.GetByID(context.Background(), testProjectID)
	assert.Equal(t, entity.ProjectStatusApproved, project.Status)
}

func TestMint_PersistenceFailureDoesNotFailTheMint(t *testing.T) {
	f := newFixture(entity.ProjectStatusApproved)
	f.records.insertErr = errors.New("connection reset")

	result, err := f.uc.Mint(context.Background(), mintReq(), testAdminID)

	// The ledger mint is authoritative: the caller still gets a success
	// and the bookkeeping is queued for reconciliation.
	require.NoError(t, err)
	assert.Equal(t, testMint, result.Mint)
	assert.Len(t, f.uc.recon.jobs, 1)
}

func TestMint_ConcurrentRequestsSerializePerProject(t *testing.T) {
	f := newFixture(entity.ProjectStatusApproved)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Mint(context.Background(), mintReq(), testAdminID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, invalidState int
	for err := range results {
		if err == nil {
			successes++
		} else if apperror.Map(err).Code == apperror.CodeInvalidState {
			invalidState++
		}
	}

	// The per-project lock spans eligibility through persistence, so the
	// second request observes credits_minted and is rejected.
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, invalidState)
	assert.Len(t, f.records.inserted, 1)
}
