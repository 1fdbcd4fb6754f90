// Package leads hands contact details captured alongside a calculation to a
// downstream notifier. It never provisions accounts or credentials.
package leads

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/property-calc/pkg/validation"
	"go.uber.org/zap"
)

// Calculator kinds a lead can originate from.
const (
	KindMortgage  = "mortgage"
	KindBorrowing = "borrowing"
	KindTax       = "tax"
	KindHousehold = "household"
	KindGrowth    = "growth"
	KindPortfolio = "portfolio"
)

// Submission is what a user sends with a lead form.
type Submission struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email,max=254"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
	Kind  string `json:"kind" validate:"required,oneof=mortgage borrowing tax household growth portfolio"`
	// Result holds the headline figures the user saw, e.g. repaymentAmount.
	Result map[string]float64 `json:"result" validate:"required,min=1,max=50,dive,finite"`
}

// Lead is an accepted submission.
type Lead struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone,omitempty"`
	Kind        string             `json:"kind"`
	Result      map[string]float64 `json:"result"`
	SubmittedAt time.Time          `json:"submittedAt"`
}

// Notifier delivers accepted leads, e.g. to a CRM or a mailbox.
type Notifier interface {
	Notify(ctx context.Context, lead Lead) error
}

// Service validates submissions and passes them to a Notifier.
type Service struct {
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	newID    func() uuid.UUID
}

// NewService creates a lead service. A nil notifier logs leads instead.
func NewService(notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Service{
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.New,
	}
}

// Submit validates and normalizes the submission, then hands it off.
// Validation failures match validation.ErrInvalid.
func (s *Service) Submit(ctx context.Context, submission Submission) (Lead, error) {
	submission.Name = strings.TrimSpace(submission.Name)
	submission.Email = strings.ToLower(strings.TrimSpace(submission.Email))
	submission.Phone = strings.TrimSpace(submission.Phone)

	if err := validation.Struct(submission); err != nil {
		return Lead{}, err
	}

	lead := Lead{
		ID:          s.newID(),
		Name:        submission.Name,
		Email:       submission.Email,
		Phone:       submission.Phone,
		Kind:        submission.Kind,
		Result:      submission.Result,
		SubmittedAt: s.now().UTC(),
	}

	if err := s.notifier.Notify(ctx, lead); err != nil {
		s.logger.Error("failed to deliver lead",
			zap.String("op", "leads.Submit"),
			zap.String("lead_id", lead.ID.String()),
			zap.Error(err),
		)
		return Lead{}, fmt.Errorf("failed to deliver lead: %w", err)
	}

	s.logger.Info("lead submitted",
		zap.String("op", "leads.Submit"),
		zap.String("lead_id", lead.ID.String()),
		zap.String("kind", lead.Kind),
	)
	return lead, nil
}

// LogNotifier writes leads to the log. Contact details are not logged.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, lead Lead) error {
	n.logger.Info("lead received",
		zap.String("op", "leads.LogNotifier.Notify"),
		zap.String("lead_id", lead.ID.String()),
		zap.String("kind", lead.Kind),
		zap.Any("result", lead.Result),
	)
	return nil
}

// MemoryNotifier keeps leads in memory. It is safe for concurrent use.
type MemoryNotifier struct {
	mu    sync.Mutex
	leads []Lead
}

// Notify implements Notifier.
func (n *MemoryNotifier) Notify(_ context.Context, lead Lead) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.leads = append(n.leads, lead)
	return nil
}

// Leads returns a copy of the received leads.
func (n *MemoryNotifier) Leads() []Lead {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Lead(nil), n.leads...)
}
