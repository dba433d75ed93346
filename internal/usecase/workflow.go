package usecase

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ContentStudio/internal/domain"
	"ContentStudio/internal/ports"
)

// WorkflowDeps wires all driven adapters into the content workflow.
type WorkflowDeps struct {
	Clients       ports.ClientRepository
	Audits        ports.AuditRepository
	Calendar      ports.CalendarRepository
	Scripts       ports.ScriptRepository
	Schedules     ports.ScheduleRepository
	Notifications ports.NotificationRepository
	Generator     ports.Generator
	Approvals     ports.ApprovalNotifier
	Links         ports.LinkSigner
	Media         ports.MediaStore

	// ApprovalBaseURL prefixes public approval links, e.g. https://studio.example.com.
	ApprovalBaseURL string
	// PreferredModel is passed to the generator on every call. Empty lets each
	// provider use its default.
	PreferredModel string

	Now    func() time.Time
	NewID  func() string
	Logger *slog.Logger
}

// Workflow implements the content lifecycle: audit, calendar, scripts,
// client approval and scheduling.
type Workflow struct {
	clients       ports.ClientRepository
	audits        ports.AuditRepository
	calendar      ports.CalendarRepository
	scripts       ports.ScriptRepository
	schedules     ports.ScheduleRepository
	notifications ports.NotificationRepository
	generator     ports.Generator
	approvals     ports.ApprovalNotifier
	links         ports.LinkSigner
	media         ports.MediaStore

	approvalBaseURL string
	preferredModel  string

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// NewWorkflow constructs the workflow engine.
func NewWorkflow(deps WorkflowDeps) *Workflow {
	w := &Workflow{
		clients:         deps.Clients,
		audits:          deps.Audits,
		calendar:        deps.Calendar,
		scripts:         deps.Scripts,
		schedules:       deps.Schedules,
		notifications:   deps.Notifications,
		generator:       deps.Generator,
		approvals:       deps.Approvals,
		links:           deps.Links,
		media:           deps.Media,
		approvalBaseURL: deps.ApprovalBaseURL,
		preferredModel:  deps.PreferredModel,
		now:             deps.Now,
		newID:           deps.NewID,
		logger:          deps.Logger,
	}
	if w.now == nil {
		w.now = func() time.Time { return time.Now().UTC() }
	}
	if w.newID == nil {
		w.newID = uuid.NewString
	}
	return w
}

// persistence wraps store errors. NotFoundError passes through untouched.
func persistence(op string, err error) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

func (w *Workflow) debug(msg string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Debug(msg, args...)
}

func (w *Workflow) info(msg string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Info(msg, args...)
}

func (w *Workflow) warn(msg string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Warn(msg, args...)
}

// bestEffort runs a secondary write, logs a failure and records it in effects.
func (w *Workflow) bestEffort(effects *domain.Effects, name string, err error) {
	effects.Record(name, err)
	if err != nil {
		w.warn("side effect failed", "effect", name, "error", err)
	}
}
