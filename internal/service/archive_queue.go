package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"work-time-bot/internal/errs"
	"work-time-bot/internal/models"
	"work-time-bot/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ArchiveBatchSize     = 10
	ArchiveRetention     = 30 * 24 * time.Hour
	DefaultArchivePeriod = 300 * time.Second

	// задача в processing дольше этого срока считается брошенной
	ArchiveProcessingLease = 15 * time.Minute
)

// ArchiveTarget - куда сохранять документ (из настроек)
type ArchiveTarget struct {
	Destination string
	Path        string
}

// ArchiveDocument - все, что нужно генератору для документа за месяц
type ArchiveDocument struct {
	DocumentID string
	Job        models.ArchiveJob
	Data       *MonthData
	Approver   *models.Employee
}

// DocumentGenerator рендерит и сохраняет документ, возвращает путь к нему.
// Повторный вызов для того же месяца перезаписывает документ.
type DocumentGenerator interface {
	Generate(ctx context.Context, target ArchiveTarget, doc *ArchiveDocument) (string, error)
}

type BatchResult struct {
	RunID     string
	Skipped   bool
	Processed int
	Completed int
	Retried   int
	Failed    int
	Reclaimed int64
	Purged    int64
}

type ArchiveQueueProcessor struct {
	clock
	jobs      repository.ArchiveJobRepository
	employees repository.EmployeeRepository
	stats     *MonthlyStatService
	settings  *SettingsService
	generator DocumentGenerator
	logger    *logrus.Logger
}

func NewArchiveQueueProcessor(
	jobs repository.ArchiveJobRepository,
	employees repository.EmployeeRepository,
	stats *MonthlyStatService,
	settings *SettingsService,
	generator DocumentGenerator,
) *ArchiveQueueProcessor {
	return &ArchiveQueueProcessor{
		jobs:      jobs,
		employees: employees,
		stats:     stats,
		settings:  settings,
		generator: generator,
		logger:    newLogger(),
	}
}

// Enqueue ставит месяц в очередь; если активная задача уже есть, возвращает ее
func (p *ArchiveQueueProcessor) Enqueue(employeeID uint, year, month int, approverID uint) (*models.ArchiveJob, error) {
	if month < 1 || month > 12 {
		return nil, errs.Invalid("month", "месяц должен быть от 1 до 12")
	}

	job := &models.ArchiveJob{
		EmployeeID: employeeID,
		Year:       year,
		Month:      month,
		ApprovedAt: p.current(),
		Status:     models.ArchiveStatusPending,
	}
	if approverID != 0 {
		approver := approverID
		job.ApproverID = &approver
	}

	result, created, err := p.jobs.CreateIfNoActive(job)
	if err != nil {
		p.logger.WithError(err).Error("Failed to enqueue archive job")
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"job_id":      result.ID,
		"employee_id": employeeID,
		"year":        year,
		"month":       month,
		"created":     created,
	}).Info("Archive job enqueued")
	return result, nil
}

// ProcessPending обрабатывает одну пачку задач. Ошибка одной задачи не прерывает пачку.
func (p *ArchiveQueueProcessor) ProcessPending(ctx context.Context) (*BatchResult, error) {
	result := &BatchResult{RunID: uuid.NewString()}
	log := p.logger.WithField("run_id", result.RunID)

	target := ArchiveTarget{
		Destination: p.settings.ArchiveDestination(),
		Path:        p.settings.ArchivePath(),
	}
	if target.Destination == "" || p.generator == nil {
		log.Debug("Archive destination is not configured, skipping run")
		result.Skipped = true
		return result, nil
	}

	reclaimed, err := p.jobs.ReclaimProcessing(p.current().Add(-ArchiveProcessingLease))
	if err != nil {
		return nil, fmt.Errorf("failed to reclaim stale archive jobs: %w", err)
	}
	result.Reclaimed = reclaimed

	jobs, err := p.jobs.GetPending(ArchiveBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending archive jobs: %w", err)
	}

	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}

		result.Processed++
		switch p.processJob(ctx, target, job) {
		case models.ArchiveStatusCompleted:
			result.Completed++
		case models.ArchiveStatusFailed:
			result.Failed++
		default:
			result.Retried++
		}
	}

	cutoff := p.current().Add(-ArchiveRetention)
	purged, err := p.jobs.DeleteCompletedBefore(cutoff)
	if err != nil {
		log.WithError(err).Warn("Failed to purge completed archive jobs")
	}
	result.Purged = purged

	log.WithFields(logrus.Fields{
		"reclaimed": result.Reclaimed,
		"processed": result.Processed,
		"completed": result.Completed,
		"retried":   result.Retried,
		"failed":    result.Failed,
		"purged":    result.Purged,
	}).Info("Archive run finished")
	return result, nil
}

// processJob возвращает итоговый статус задачи
func (p *ArchiveQueueProcessor) processJob(ctx context.Context, target ArchiveTarget, job *models.ArchiveJob) string {
	log := p.logger.WithFields(logrus.Fields{
		"job_id":      job.ID,
		"employee_id": job.EmployeeID,
		"year":        job.Year,
		"month":       job.Month,
		"attempt":     job.Attempts + 1,
	})

	now := p.current()
	job.Status = models.ArchiveStatusProcessing
	job.SubmittedAt = &now
	if err := p.jobs.Update(job); err != nil {
		log.WithError(err).Error("Failed to mark archive job as processing")
		return p.fail(job, err, log)
	}

	path, err := p.runJob(ctx, target, job)
	if err != nil && ctx.Err() != nil {
		return p.release(job, log)
	}
	if err != nil {
		return p.fail(job, err, log)
	}

	processed := p.current()
	job.Status = models.ArchiveStatusCompleted
	job.ProcessedAt = &processed
	job.DocumentPath = path
	job.LastError = nil
	if err := p.jobs.Update(job); err != nil {
		log.WithError(err).Error("Failed to mark archive job as completed")
		return p.fail(job, err, log)
	}

	log.WithField("path", path).Info("Archive job completed")
	return job.Status
}

// runJob перехватывает панику, чтобы она не уронила пачку
func (p *ArchiveQueueProcessor) runJob(ctx context.Context, target ArchiveTarget, job *models.ArchiveJob) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	data, err := p.stats.Compute(job.EmployeeID, job.Year, job.Month)
	if err != nil {
		return "", fmt.Errorf("statistics: %w", err)
	}

	doc := &ArchiveDocument{
		DocumentID: uuid.NewString(),
		Job:        *job,
		Data:       data,
	}
	if job.ApproverID != nil {
		approver, err := p.employees.GetByID(*job.ApproverID)
		if err != nil {
			return "", fmt.Errorf("approver: %w", err)
		}
		doc.Approver = approver
	}

	path, err = p.generator.Generate(ctx, target, doc)
	if err != nil {
		return "", fmt.Errorf("document: %w", err)
	}
	return path, nil
}

func (p *ArchiveQueueProcessor) fail(job *models.ArchiveJob, cause error, log *logrus.Entry) string {
	jobErr := &errs.TransientJobError{JobID: job.ID, Attempt: job.Attempts + 1, Err: cause}
	job.RecordFailure(jobErr)

	if err := p.jobs.Update(job); err != nil {
		log.WithError(err).Error("Failed to record archive job failure")
	}

	entry := log.WithError(cause).WithField("attempts", job.Attempts)
	if job.Status == models.ArchiveStatusFailed {
		entry.Error("Archive job failed permanently")
	} else {
		entry.Warn("Archive job failed, will retry")
	}
	return job.Status
}

// release возвращает задачу в очередь без траты попытки: обработку прервала остановка
func (p *ArchiveQueueProcessor) release(job *models.ArchiveJob, log *logrus.Entry) string {
	job.Status = models.ArchiveStatusPending
	job.SubmittedAt = nil
	if err := p.jobs.Update(job); err != nil {
		log.WithError(err).Error("Failed to release interrupted archive job")
	}
	log.Info("Archive job interrupted by shutdown, returned to queue")
	return job.Status
}

// RecoverInterrupted возвращает в очередь все задачи, оставшиеся в processing
// после прошлого запуска процесса
func (p *ArchiveQueueProcessor) RecoverInterrupted() (int64, error) {
	return p.jobs.ReclaimProcessing(p.current().Add(time.Second))
}

// Run запускает обработку по таймеру до отмены контекста
func (p *ArchiveQueueProcessor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultArchivePeriod
	}

	if _, err := p.RecoverInterrupted(); err != nil {
		p.logger.WithError(err).Error("Failed to recover interrupted archive jobs")
	}

	p.logger.WithField("interval", interval.String()).Info("Archive processor started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.ProcessPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.WithError(err).Error("Archive run failed")
		}

		select {
		case <-ctx.Done():
			p.logger.Info("Archive processor stopped")
			return
		case <-ticker.C:
		}
	}
}

func (p *ArchiveQueueProcessor) Recent(limit int) ([]*models.ArchiveJob, error) {
	return p.jobs.GetRecent(limit)
}

func FormatArchiveJobs(jobs []*models.ArchiveJob) string {
	if len(jobs) == 0 {
		return "🗄️ Очередь архивации пуста."
	}

	text := "🗄️ Задачи архивации:\n\n"
	for _, j := range jobs {
		line := fmt.Sprintf("#%d сотрудник %d, %02d.%d: %s, попыток %d", j.ID, j.EmployeeID, j.Month, j.Year, j.Status, j.Attempts)
		if j.LastError != nil && j.Status != models.ArchiveStatusCompleted {
			line += "\n   ⚠️ " + *j.LastError
		}
		text += line + "\n"
	}
	return text
}
