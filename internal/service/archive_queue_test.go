package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	"work-time-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	err      error
	panicMsg string
	docs     []*ArchiveDocument
}

func (g *fakeGenerator) Generate(ctx context.Context, target ArchiveTarget, doc *ArchiveDocument) (string, error) {
	if g.panicMsg != "" {
		panic(g.panicMsg)
	}
	if g.err != nil {
		return "", g.err
	}
	g.docs = append(g.docs, doc)
	return fmt.Sprintf("%s/employee_%d/%04d-%02d.pdf", target.Path, doc.Job.EmployeeID, doc.Job.Year, doc.Job.Month), nil
}

func newTestProcessor(t *testing.T, env *testEnv, generator DocumentGenerator) *ArchiveQueueProcessor {
	t.Helper()
	p := NewArchiveQueueProcessor(env.jobRepo, env.employeeRepo, env.stats, env.settings, generator)
	p.SetNow(func() time.Time { return env.now })
	return p
}

func TestArchiveEnqueueIsIdempotent(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	employee := env.newEmployee(t, 1, "BY")
	p := newTestProcessor(t, env, &fakeGenerator{})

	first, err := p.Enqueue(employee.ID, 2026, 2, 99)
	require.NoError(t, err)
	second, err := p.Enqueue(employee.ID, 2026, 2, 99)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = p.Enqueue(employee.ID, 2026, 0, 99)
	require.Error(t, err)
}

func TestArchiveSkipsWhenDestinationMissing(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	employee := env.newEmployee(t, 1, "BY")
	generator := &fakeGenerator{}
	p := newTestProcessor(t, env, generator)

	job, err := p.Enqueue(employee.ID, 2026, 2, 0)
	require.NoError(t, err)

	result, err := p.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, generator.docs)

	stored, err := env.jobRepo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArchiveStatusPending, stored.Status)
	assert.Zero(t, stored.Attempts)
}

func TestArchiveProcessCompletesJob(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	require.NoError(t, env.settings.Set(SettingArchiveDestination, "local"))
	employee := env.newEmployee(t, 1, "BY")
	approver := env.newEmployee(t, 2, "BY")
	env.approvedEntry(t, employee.ID, models.NewDate(2026, 2, 2))

	generator := &fakeGenerator{}
	p := newTestProcessor(t, env, generator)
	job, err := p.Enqueue(employee.ID, 2026, 2, approver.ID)
	require.NoError(t, err)

	result, err := p.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Completed)

	stored, err := env.jobRepo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArchiveStatusCompleted, stored.Status)
	assert.NotNil(t, stored.ProcessedAt)
	assert.Contains(t, stored.DocumentPath, "2026-02.pdf")
	assert.Nil(t, stored.LastError)

	require.Len(t, generator.docs, 1)
	doc := generator.docs[0]
	assert.NotEmpty(t, doc.DocumentID)
	require.NotNil(t, doc.Approver)
	assert.Equal(t, approver.ID, doc.Approver.ID)
	assert.Equal(t, 480, doc.Data.Statistics.WorkedMinutes)

	// после завершения можно поставить месяц повторно
	again, err := p.Enqueue(employee.ID, 2026, 2, approver.ID)
	require.NoError(t, err)
	assert.NotEqual(t, job.ID, again.ID)
}

func TestArchiveRetriesThenFails(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	require.NoError(t, env.settings.Set(SettingArchiveDestination, "local"))
	employee := env.newEmployee(t, 1, "BY")

	generator := &fakeGenerator{err: errors.New("destination unavailable")}
	p := newTestProcessor(t, env, generator)
	job, err := p.Enqueue(employee.ID, 2026, 2, 0)
	require.NoError(t, err)

	for attempt := 1; attempt <= models.MaxArchiveAttempts; attempt++ {
		_, err := p.ProcessPending(context.Background())
		require.NoError(t, err)

		stored, err := env.jobRepo.GetByID(job.ID)
		require.NoError(t, err)
		assert.Equal(t, attempt, stored.Attempts)
		require.NotNil(t, stored.LastError)
		assert.Contains(t, *stored.LastError, "destination unavailable")

		if attempt < models.MaxArchiveAttempts {
			assert.Equal(t, models.ArchiveStatusPending, stored.Status)
		} else {
			assert.Equal(t, models.ArchiveStatusFailed, stored.Status)
		}
	}

	// failed задача больше не берется в работу
	result, err := p.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Processed)

	stored, err := env.jobRepo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MaxArchiveAttempts, stored.Attempts)
}

func TestArchivePanicDoesNotAbortBatch(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	require.NoError(t, env.settings.Set(SettingArchiveDestination, "local"))
	employee := env.newEmployee(t, 1, "BY")

	p := newTestProcessor(t, env, &fakeGenerator{panicMsg: "renderer crashed"})
	_, err := p.Enqueue(employee.ID, 2026, 1, 0)
	require.NoError(t, err)
	_, err = p.Enqueue(employee.ID, 2026, 2, 0)
	require.NoError(t, err)

	result, err := p.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Retried)
}

func TestArchiveMissingEmployeeFailsOnlyThatJob(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	require.NoError(t, env.settings.Set(SettingArchiveDestination, "local"))
	employee := env.newEmployee(t, 1, "BY")

	p := newTestProcessor(t, env, &fakeGenerator{})
	broken, err := p.Enqueue(404, 2026, 2, 0)
	require.NoError(t, err)
	_, err = p.Enqueue(employee.ID, 2026, 2, 0)
	require.NoError(t, err)

	result, err := p.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Completed)
	assert.Equal(t, 1, result.Retried)

	stored, err := env.jobRepo.GetByID(broken.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Attempts)
}

func TestArchiveBatchLimit(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	require.NoError(t, env.settings.Set(SettingArchiveDestination, "local"))
	employee := env.newEmployee(t, 1, "BY")

	generator := &fakeGenerator{}
	p := newTestProcessor(t, env, generator)
	for month := 1; month <= 12; month++ {
		_, err := p.Enqueue(employee.ID, 2025, month, 0)
		require.NoError(t, err)
	}

	result, err := p.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ArchiveBatchSize, result.Processed)

	result, err = p.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
}

func TestArchivePurgesOldCompletedJobs(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	require.NoError(t, env.settings.Set(SettingArchiveDestination, "local"))

	old := env.now.Add(-31 * 24 * time.Hour)
	recent := env.now.Add(-24 * time.Hour)
	for i, processed := range []time.Time{old, recent} {
		processedAt := processed
		job := &models.ArchiveJob{
			EmployeeID:  1,
			Year:        2025,
			Month:       i + 1,
			Status:      models.ArchiveStatusPending,
			ApprovedAt:  processed,
			ProcessedAt: &processedAt,
		}
		created, _, err := env.jobRepo.CreateIfNoActive(job)
		require.NoError(t, err)
		created.Status = models.ArchiveStatusCompleted
		require.NoError(t, env.jobRepo.Update(created))
	}

	p := newTestProcessor(t, env, &fakeGenerator{})
	result, err := p.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Purged)

	jobs, err := p.Recent(10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 2, jobs[0].Month)
	assert.Contains(t, FormatArchiveJobs(jobs), "completed")
}

func TestArchiveRunStopsOnCancel(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	p := newTestProcessor(t, env, &fakeGenerator{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("archive processor did not stop")
	}
}

func TestArchiveReclaimsAbandonedProcessingJob(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	require.NoError(t, env.settings.Set(SettingArchiveDestination, "local"))
	employee := env.newEmployee(t, 1, "BY")
	p := newTestProcessor(t, env, &fakeGenerator{})

	job, err := p.Enqueue(employee.ID, 2026, 2, 0)
	require.NoError(t, err)

	// процесс упал посреди обработки час назад
	startedAt := env.now.Add(-time.Hour)
	job.Status = models.ArchiveStatusProcessing
	job.SubmittedAt = &startedAt
	require.NoError(t, env.jobRepo.Update(job))

	result, err := p.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Reclaimed)
	assert.Equal(t, 1, result.Completed)

	stored, err := env.jobRepo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArchiveStatusCompleted, stored.Status)
	assert.Zero(t, stored.Attempts)

	again, err := p.Enqueue(employee.ID, 2026, 2, 0)
	require.NoError(t, err)
	assert.NotEqual(t, job.ID, again.ID)
}

func TestArchiveRecoverInterruptedOnStartup(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	employee := env.newEmployee(t, 1, "BY")
	p := newTestProcessor(t, env, &fakeGenerator{})

	job, err := p.Enqueue(employee.ID, 2026, 2, 0)
	require.NoError(t, err)

	// свежая задача в processing: срок аренды не вышел, пачка ее не трогает
	startedAt := env.now
	job.Status = models.ArchiveStatusProcessing
	job.SubmittedAt = &startedAt
	require.NoError(t, env.jobRepo.Update(job))

	require.NoError(t, env.settings.Set(SettingArchiveDestination, "local"))
	result, err := p.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Reclaimed)
	assert.Zero(t, result.Processed)

	// при старте процесса ничего не обрабатывается, все processing брошены
	reclaimed, err := p.RecoverInterrupted()
	require.NoError(t, err)
	assert.Equal(t, int64(1), reclaimed)

	stored, err := env.jobRepo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArchiveStatusPending, stored.Status)
}

// cancellingGenerator имитирует остановку процесса во время генерации
type cancellingGenerator struct {
	cancel context.CancelFunc
}

func (g *cancellingGenerator) Generate(ctx context.Context, target ArchiveTarget, doc *ArchiveDocument) (string, error) {
	g.cancel()
	return "", ctx.Err()
}

func TestArchiveShutdownDoesNotSpendAttempt(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	require.NoError(t, env.settings.Set(SettingArchiveDestination, "local"))
	employee := env.newEmployee(t, 1, "BY")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newTestProcessor(t, env, &cancellingGenerator{cancel: cancel})

	first, err := p.Enqueue(employee.ID, 2026, 1, 0)
	require.NoError(t, err)
	second, err := p.Enqueue(employee.ID, 2026, 2, 0)
	require.NoError(t, err)

	result, err := p.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Retried)

	for _, id := range []uint{first.ID, second.ID} {
		stored, err := env.jobRepo.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, models.ArchiveStatusPending, stored.Status)
		assert.Zero(t, stored.Attempts)
		assert.Nil(t, stored.LastError)
	}
}
