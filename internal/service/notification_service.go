package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ren-jimpo/shift-management-app-sub000/config"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/mail"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/timeutil"
)

// NotificationService outbound email: the daily reminder job and manual sends.
// It talks to the mail sender synchronously so results can be tallied.
type NotificationService interface {
	SendDailyShiftNotifications(ctx context.Context) (*dto.DailyNotificationResult, error)
	SendEmail(ctx context.Context, req *dto.SendEmailRequest) (*dto.EmailSentResponse, error)
	SendTest(ctx context.Context, req *dto.TestEmailRequest) (*dto.EmailSentResponse, error)
}

type notificationService struct {
	repo       *repository.Repository
	sender     mail.Sender
	batchSize  int
	batchDelay time.Duration
	baseURL    string
	loc        *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(repo *repository.Repository, sender mail.Sender, cfg *config.MailConfig, baseURL string, loc *time.Location, logger *zap.Logger) NotificationService {
	size := cfg.BatchSize
	if size <= 0 {
		size = 5
	}
	if loc == nil {
		loc = time.Local
	}
	return &notificationService{
		repo:       repo,
		sender:     sender,
		batchSize:  size,
		batchDelay: cfg.BatchDelay,
		baseURL:    baseURL,
		loc:        loc,
		now:        time.Now,
		logger:     logger,
	}
}

// ═══════════════════════════════════════════════════════════
// SendDailyShiftNotifications
// ═══════════════════════════════════════════════════════════
//
// Loads today's confirmed shifts (business timezone) and sends one reminder
// per shift, batchSize at a time with batchDelay between batches. A failed
// recipient is counted and logged; it never stops the run.

func (s *notificationService) SendDailyShiftNotifications(ctx context.Context) (*dto.DailyNotificationResult, error) {
	today, _ := timeutil.ParseDate(s.now().In(s.loc).Format(timeutil.DateLayout))
	result := &dto.DailyNotificationResult{Date: timeutil.FormatDate(today)}

	shifts, err := s.repo.Shift.List(ctx, repository.ShiftFilter{
		Status:   model.ShiftStatusConfirmed,
		DateFrom: &today,
		DateTo:   &today,
	})
	if err != nil {
		s.logger.Error("load today's shifts failed", zap.Error(err))
		return nil, err
	}
	result.Total = len(shifts)

	var sent, failed int64
	for start := 0; start < len(shifts); start += s.batchSize {
		if start > 0 && s.batchDelay > 0 {
			select {
			case <-ctx.Done():
				result.Sent, result.Failed = int(sent), int(failed)
				return result, ctx.Err()
			case <-time.After(s.batchDelay):
			}
		}

		end := start + s.batchSize
		if end > len(shifts) {
			end = len(shifts)
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			sh := &shifts[i]
			g.Go(func() error {
				if err := s.sendReminder(ctx, sh); err != nil {
					atomic.AddInt64(&failed, 1)
					s.logger.Warn("shift reminder failed",
						zap.String("shift_id", sh.ID),
						zap.String("user_id", sh.UserID),
						zap.Error(err),
					)
					return nil
				}
				atomic.AddInt64(&sent, 1)
				return nil
			})
		}
		_ = g.Wait()
	}

	result.Sent, result.Failed = int(sent), int(failed)
	s.logger.Info("daily shift notifications done",
		zap.String("date", result.Date),
		zap.Int("total", result.Total),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *notificationService) sendReminder(ctx context.Context, sh *model.Shift) error {
	if sh.User == nil || sh.User.Email == "" {
		return mail.ErrNoRecipients
	}
	data := mailData{
		Name:    sh.User.Name,
		Date:    timeutil.FormatDate(sh.Date),
		BaseURL: s.baseURL,
	}
	if sh.Store != nil {
		data.Store = sh.Store.Name
	}
	if sh.Pattern != nil {
		data.Start = clock(sh.Pattern.StartTime)
		data.End = clock(sh.Pattern.EndTime)
	}
	msg, err := renderMail(sh.User.Email, "Today's shift: "+data.Date, "shift_reminder", data)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, msg)
}

// ────────────────────── manual sends ──────────────────────

func (s *notificationService) SendEmail(ctx context.Context, req *dto.SendEmailRequest) (*dto.EmailSentResponse, error) {
	if req.HTML == "" && req.Text == "" {
		return nil, invalidFields("either html or text is required", "html", "text")
	}
	msg := mail.Message{To: req.To, Subject: req.Subject, HTML: req.HTML, Text: req.Text}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("send email failed", zap.Int("recipients", len(req.To)), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrMailNotDeliverable, err)
	}
	return &dto.EmailSentResponse{Sent: true, Recipients: len(req.To)}, nil
}

func (s *notificationService) SendTest(ctx context.Context, req *dto.TestEmailRequest) (*dto.EmailSentResponse, error) {
	msg, err := renderMail(req.To, "Test email", "test", mailData{BaseURL: s.baseURL})
	if err != nil {
		return nil, err
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("send test email failed", zap.String("to", req.To), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrMailNotDeliverable, err)
	}
	return &dto.EmailSentResponse{Sent: true, Recipients: 1}, nil
}
