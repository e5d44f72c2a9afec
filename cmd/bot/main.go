package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	"work-time-bot/internal/archive"
	"work-time-bot/internal/config"
	"work-time-bot/internal/handler"
	"work-time-bot/internal/repository"
	"work-time-bot/internal/service"
	"work-time-bot/pkg/telegram"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetBotConfig()
	logrus.Info("Config initialized...")

	// Инициализируем SQLite базу данных
	db, err := gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true, // SQLite ограничения
	})
	if err != nil {
		logrus.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatal("Failed to get database instance:", err)
	}

	// Один писатель: бот и архиватор работают с одной базой
	sqlDB.SetMaxOpenConns(1)

	if _, err = sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logrus.Infof("Warning: Failed to enable foreign keys: %v", err)
	}
	if _, err = sqlDB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logrus.Infof("Warning: Failed to set busy timeout: %v", err)
	}

	employeeRepo, err := repository.NewGormEmployeeRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create employee repository")
	}
	entryRepo, err := repository.NewGormTimeEntryRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create time entry repository")
	}
	absenceRepo, err := repository.NewGormAbsenceRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create absence repository")
	}
	holidayRepo, err := repository.NewGormHolidayRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create holiday repository")
	}
	archiveJobRepo, err := repository.NewGormArchiveJobRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create archive job repository")
	}
	settingRepo, err := repository.NewGormSettingRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create setting repository")
	}
	auditRepo, err := repository.NewGormAuditRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create audit repository")
	}

	settingsService := service.NewSettingsService(settingRepo, service.SettingsDefaults{
		MaxDailyHours:      cfg.MaxDailyHours,
		MinBreak6h:         int(cfg.MinBreak6h),
		MinBreak9h:         int(cfg.MinBreak9h),
		AllowFutureEntries: cfg.AllowFutureEntries,
		ArchiveDestination: cfg.ArchiveDestination,
		ArchivePath:        cfg.ArchivePath,
	})
	auditService := service.NewAuditService(auditRepo)

	employeeService := service.NewEmployeeService(employeeRepo, service.EmployeeDefaults{
		Region:       cfg.DefaultRegion,
		WeeklyHours:  cfg.DefaultWeeklyHours,
		VacationDays: cfg.DefaultVacationDays,
	})

	calendarService := service.NewCalendarService(holidayRepo)
	workingDays := service.NewWorkingDayCounter(calendarService)

	timeEntryService := service.NewTimeEntryService(entryRepo, settingsService, auditService)
	absenceService := service.NewAbsenceService(absenceRepo, employeeRepo, workingDays, timeEntryService, auditService)
	monthlyStatService := service.NewMonthlyStatService(employeeRepo, entryRepo, absenceRepo, calendarService)

	archiveProcessor := service.NewArchiveQueueProcessor(
		archiveJobRepo,
		employeeRepo,
		monthlyStatService,
		settingsService,
		archive.NewPDFGenerator(),
	)
	timeEntryService.SetArchiver(archiveProcessor)

	// Инициализируем администратора из конфига
	if err := employeeService.InitializeAdmin(cfg.BaseAdminChatID); err != nil {
		logrus.Infof("Warning: Failed to initialize admin: %v", err)
	} else if cfg.BaseAdminChatID != 0 {
		logrus.Infof("Admin initialized with chat ID: %d", cfg.BaseAdminChatID)
	}

	// Праздники текущего года для региона по умолчанию
	year := time.Now().Year()
	if err := calendarService.EnsureYear(year, cfg.DefaultRegion); err != nil {
		logrus.WithError(err).Warnf("Failed to generate holidays for %d", year)
	}
	if cfg.HolidaysJSON != "" {
		count, err := calendarService.ImportFromJSON(cfg.HolidaysJSON, cfg.DefaultRegion)
		if err != nil {
			logrus.WithError(err).Warn("Failed to import holidays calendar")
		} else {
			logrus.Infof("Imported %d calendar days from %s", count, cfg.HolidaysJSON)
		}
	}

	client, err := telegram.NewClient(cfg.TelegramToken, cfg.TelegramDebug)
	if err != nil {
		logrus.Fatal("Failed to create Telegram client:", err)
	}

	logrus.Infof("Authorized on account %s", client.Bot.Self.UserName)

	botHandler := handler.NewHandler(
		client,
		employeeService,
		timeEntryService,
		absenceService,
		calendarService,
		monthlyStatService,
		settingsService,
		archiveProcessor,
		cfg,
	)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		archiveProcessor.Run(ctx, cfg.ArchiveInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		botHandler.HandleUpdates(client.Updates())
	}()

	// Обработка сигналов для graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	logrus.Info("Bot started. Press Ctrl+C to stop.")
	<-stop

	logrus.Info("Shutting down...")
	cancel()
	client.Stop()
	wg.Wait()

	if err := sqlDB.Close(); err != nil {
		logrus.Infof("Error closing database: %v", err)
	}

	logrus.Info("Bot stopped gracefully")
}
