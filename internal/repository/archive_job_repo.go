package repository

import (
	"errors"
	"time"
	"work-time-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ArchiveJobRepository interface {
	// CreateIfNoActive создает задачу, если для (employee, year, month) нет pending/processing.
	// Возвращает существующую активную задачу и false, если она есть.
	CreateIfNoActive(job *models.ArchiveJob) (*models.ArchiveJob, bool, error)
	Update(job *models.ArchiveJob) error
	GetByID(id uint) (*models.ArchiveJob, error)
	GetPending(limit int) ([]*models.ArchiveJob, error)
	// ReclaimProcessing возвращает в pending задачи processing, взятые в работу до before
	ReclaimProcessing(before time.Time) (int64, error)
	GetRecent(limit int) ([]*models.ArchiveJob, error)
	DeleteCompletedBefore(cutoff time.Time) (int64, error)
}

type GormArchiveJobRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormArchiveJobRepository(db *gorm.DB) (*GormArchiveJobRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.ArchiveJob{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate archive_jobs table")
		return nil, err
	}

	logger.Info("Archive job repository initialized")
	return &GormArchiveJobRepository{db: db, logger: logger}, nil
}

func (r *GormArchiveJobRepository) CreateIfNoActive(job *models.ArchiveJob) (*models.ArchiveJob, bool, error) {
	var existing models.ArchiveJob
	created := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("employee_id = ? AND year = ? AND month = ? AND status IN ?",
			job.EmployeeID, job.Year, job.Month,
			[]string{models.ArchiveStatusPending, models.ArchiveStatusProcessing}).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(job).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if !created {
		return &existing, false, nil
	}
	return job, true, nil
}

func (r *GormArchiveJobRepository) Update(job *models.ArchiveJob) error {
	return r.db.Save(job).Error
}

func (r *GormArchiveJobRepository) GetByID(id uint) (*models.ArchiveJob, error) {
	var job models.ArchiveJob
	err := r.db.First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *GormArchiveJobRepository) GetPending(limit int) ([]*models.ArchiveJob, error) {
	var jobs []*models.ArchiveJob
	err := r.db.Where("status = ?", models.ArchiveStatusPending).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (r *GormArchiveJobRepository) ReclaimProcessing(before time.Time) (int64, error) {
	result := r.db.Model(&models.ArchiveJob{}).
		Where("status = ? AND (submitted_at IS NULL OR submitted_at < ?)", models.ArchiveStatusProcessing, before).
		Update("status", models.ArchiveStatusPending)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		r.logger.WithField("count", result.RowsAffected).Warn("Reclaimed interrupted archive jobs")
	}
	return result.RowsAffected, nil
}

func (r *GormArchiveJobRepository) GetRecent(limit int) ([]*models.ArchiveJob, error) {
	var jobs []*models.ArchiveJob
	err := r.db.Order("created_at DESC, id DESC").Limit(limit).Find(&jobs).Error
	return jobs, err
}

func (r *GormArchiveJobRepository) DeleteCompletedBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("status = ? AND processed_at < ?", models.ArchiveStatusCompleted, cutoff).
		Delete(&models.ArchiveJob{})
	return result.RowsAffected, result.Error
}
