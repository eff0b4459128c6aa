package internal

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ExpenseStep is one state of the expense-entry sequence.
type ExpenseStep int

const (
	StepOpenEntryForm ExpenseStep = iota
	StepSelectCategory
	StepPopulateDate
	StepPopulateAmount
	StepAttachReceipt
	StepAwaitAttachmentReady
	StepSave
)

// ExpenseSteps lists the states in the order they run.
var ExpenseSteps = []ExpenseStep{
	StepOpenEntryForm,
	StepSelectCategory,
	StepPopulateDate,
	StepPopulateAmount,
	StepAttachReceipt,
	StepAwaitAttachmentReady,
	StepSave,
}

func (s ExpenseStep) String() string {
	switch s {
	case StepOpenEntryForm:
		return "open-entry-form"
	case StepSelectCategory:
		return "select-category"
	case StepPopulateDate:
		return "populate-date"
	case StepPopulateAmount:
		return "populate-amount"
	case StepAttachReceipt:
		return "attach-receipt"
	case StepAwaitAttachmentReady:
		return "await-attachment-ready"
	case StepSave:
		return "save"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// StepError is the failure of one step of one expense. The form is left as
// it is; there is no rollback.
type StepError struct {
	Step    ExpenseStep
	Receipt Receipt
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("expense %s (%s, %s): %s: %v", e.Receipt.ID, e.Receipt.Date, e.Receipt.Amount, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ExpenseEntry drives the "add one expense" form of the target UI.
type ExpenseEntry struct {
	Browser   Browser
	Selectors ReplaySelectors
	Timing    Timing
	Log       zerolog.Logger

	// OnStep, when set, is called after each step completes.
	OnStep func(step ExpenseStep, r Receipt)
}

// Add runs every step for r in order. A step is left only once its element
// was found and acted upon.
func (m *ExpenseEntry) Add(ctx context.Context, r Receipt) error {
	for _, step := range ExpenseSteps {
		if err := m.run(ctx, step, r); err != nil {
			return &StepError{Step: step, Receipt: r, Err: err}
		}
		m.Log.Debug().Str("order", r.ID).Stringer("step", step).Msg("step done")
		if m.OnStep != nil {
			m.OnStep(step, r)
		}
	}
	return nil
}

func (m *ExpenseEntry) run(ctx context.Context, step ExpenseStep, r Receipt) error {
	sel := m.Selectors
	switch step {
	case StepOpenEntryForm:
		return ClickUntilVisible(ctx, m.Browser, sel.AddExpense, m.Timing)
	case StepSelectCategory:
		return ClickUntilVisible(ctx, m.Browser, sel.Category, m.Timing)
	case StepPopulateDate:
		return WaitAndSet(ctx, m.Browser, sel.Date, r.Date.Format(displayDateSep), m.Timing)
	case StepPopulateAmount:
		return WaitAndSet(ctx, m.Browser, sel.Amount, r.Amount, m.Timing)
	case StepAttachReceipt:
		target, err := WaitFor(ctx, m.Browser, sel.DropTarget, m.Timing)
		if err != nil {
			return err
		}
		return target.DropFile(ctx, r.Path)
	case StepAwaitAttachmentReady:
		// the detach control only shows once the upload finished server-side
		_, err := WaitFor(ctx, m.Browser, sel.Detach, m.Timing)
		return err
	case StepSave:
		return ClickUntilVisible(ctx, m.Browser, sel.Save, m.Timing)
	default:
		return fmt.Errorf("unknown step %s", step)
	}
}

// ReplayAll enters the receipts oldest first, each exactly once, and stops at
// the first failure. It returns how many expenses were saved.
func (m *ExpenseEntry) ReplayAll(ctx context.Context, receipts []Receipt) (int, error) {
	ordered := make([]Receipt, len(receipts))
	copy(ordered, receipts)
	SortOldestFirst(ordered)

	for i, r := range ordered {
		m.Log.Info().
			Str("order", r.ID).
			Stringer("date", r.Date).
			Str("amount", r.Amount).
			Msgf("adding expense %d/%d", i+1, len(ordered))
		if err := m.Add(ctx, r); err != nil {
			return i, err
		}
	}
	return len(ordered), nil
}

// ReportStarter opens a new, named expense report.
type ReportStarter struct {
	Browser   Browser
	Selectors ReplaySelectors
	Timing    Timing
	Optional  Timing // budget for pop-ups that may not show up
	Log       zerolog.Logger
}

// Start clicks "start a report", dismisses any walk-through pop-ups, and
// submits the report name.
func (s *ReportStarter) Start(ctx context.Context, name string) error {
	if err := ClickUntilVisible(ctx, s.Browser, s.Selectors.StartReport, s.Timing); err != nil {
		return fmt.Errorf("starting report: %w", err)
	}

	for _, loc := range s.Selectors.Dismiss {
		el, ok, err := WaitOptional(ctx, s.Browser, loc, s.Optional)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := ClickElementUntilVisible(ctx, el, loc.String(), s.Timing); err != nil {
			return fmt.Errorf("dismissing %s: %w", loc, err)
		}
		s.Log.Debug().Stringer("popup", loc).Msg("dismissed")
	}

	field, err := WaitFor(ctx, s.Browser, s.Selectors.ReportName, s.Timing)
	if err != nil {
		return fmt.Errorf("report name: %w", err)
	}
	if err := SetField(ctx, field, name); err != nil {
		return fmt.Errorf("report name: %w", err)
	}
	if err := field.Submit(ctx); err != nil {
		return fmt.Errorf("submitting report name: %w", err)
	}
	return nil
}
