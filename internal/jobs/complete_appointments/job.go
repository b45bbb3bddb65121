package complete_appointments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultRunTimeout = time.Minute

// Job фоновая задача завершения встреч
type Job struct {
	completer Completer
	metrics   Metrics
	logger    Logger
	timeout   time.Duration
}

// NewJob создает новую задачу завершения встреч
func NewJob(completer Completer, metrics Metrics, logger Logger) *Job {
	return &Job{
		completer: completer,
		metrics:   metrics,
		logger:    logger,
		timeout:   defaultRunTimeout,
	}
}

// Run реализует cron.Job
func (j *Job) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	_, _ = j.RunOnce(ctx)
}

// RunOnce выполняет один проход и возвращает число завершённых встреч
func (j *Job) RunOnce(ctx context.Context) (int64, error) {
	n, err := j.completer.CompleteEnded(ctx)
	if err != nil {
		j.logger.Error("CompleteAppointments: failed to complete ended appointments: %v", err)
		return 0, err
	}

	if n > 0 {
		if j.metrics != nil {
			j.metrics.AddCompleted(n)
		}
		j.logger.Info("CompleteAppointments: %d appointments completed", n)
	}
	return n, nil
}

// Scheduler запускает задачу по cron-расписанию
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler регистрирует задачу по расписанию spec (стандартный формат cron или @every)
func NewScheduler(spec string, loc *time.Location, job *Job, logger Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger: logger}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("complete_appointments: invalid schedule %q: %w", spec, err)
	}

	return &Scheduler{cron: c}, nil
}

// Start запускает планировщик в фоне
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик и ждёт завершения текущего прохода
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger адаптер логгера сервиса к cron.Logger
type cronLogger struct {
	logger Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	// служебные сообщения планировщика о каждом запуске не нужны
	if msg == "wake" || msg == "run" || msg == "schedule" || msg == "added" {
		return
	}
	l.logger.Info("cron: %s%s", msg, formatKeys(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: %s: %v%s", msg, err, formatKeys(keysAndValues))
}

func formatKeys(keysAndValues []interface{}) string {
	var b strings.Builder
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	return b.String()
}
