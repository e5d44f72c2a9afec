package service

import (
	"time"
	"work-time-bot/internal/models"

	"github.com/sirupsen/logrus"
)

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}

// clock встраивается в сервисы, которым нужна "сегодняшняя" дата
type clock struct {
	now func() time.Time
}

// SetNow подменяет источник времени (используется в тестах)
func (c *clock) SetNow(now func() time.Time) {
	c.now = now
}

func (c *clock) current() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

func (c *clock) today() time.Time {
	return models.DateOnly(c.current())
}
