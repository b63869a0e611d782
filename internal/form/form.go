// Package form is the controller behind the single add/edit form.
//
// It starts in ModeAdd. Edit moves it to ModeEditing; a successful Submit or
// CancelEdit moves it back. Delete requests are a separate two-step flow that
// does not touch the form mode unless the deleted record is the one being
// edited.
package form

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Makepad-fr/dashboard/internal/model"
)

// ErrNotFound is returned by callers that need to tell a user an id is gone.
// The controller itself treats misses as silent no-ops.
var ErrNotFound = errors.New("record not found")

// Mode is the form state.
type Mode int

const (
	ModeAdd Mode = iota
	ModeEditing
)

func (m Mode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "add"
}

// RecordStore is what the controller mutates.
type RecordStore interface {
	FindByID(id int64) (model.Record, bool)
	Add(r model.Record) (model.Record, error)
	Update(id int64, name string, value float64, phone string) (bool, error)
	Remove(id int64) (bool, error)
}

// Outcome describes what a successful Submit did.
type Outcome struct {
	Created bool         // false means an edit was committed (or its record had vanished)
	Record  model.Record // the record as stored; zero when an edited record had vanished
}

// Options tune the controller.
type Options struct {
	// RequirePhone enables the phone field and its 10-digit rule.
	RequirePhone bool
	Logger       *zap.Logger
}

// Controller owns the transient form state. Fields is edited directly by the
// view layer between events.
type Controller struct {
	Fields Fields

	store        RecordStore
	requirePhone bool
	log          *zap.Logger

	mode            Mode
	editingID       int64
	pendingDeleteID int64
	pending         bool
}

func New(store RecordStore, opt Options) *Controller {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		store:        store,
		requirePhone: opt.RequirePhone,
		log:          log,
	}
}

func (c *Controller) Mode() Mode          { return c.mode }
func (c *Controller) RequiresPhone() bool { return c.requirePhone }

// EditingID returns the id open for modification, if any.
func (c *Controller) EditingID() (int64, bool) {
	return c.editingID, c.mode == ModeEditing
}

// PendingDeleteID returns the id awaiting confirmation, if any.
func (c *Controller) PendingDeleteID() (int64, bool) {
	return c.pendingDeleteID, c.pending
}

// Prompting reports whether the delete confirmation should be shown.
func (c *Controller) Prompting() bool { return c.pending }

func (c *Controller) Title() string {
	if c.mode == ModeEditing {
		return "Edit Record"
	}
	return "Add New Record"
}

func (c *Controller) SubmitLabel() string {
	if c.mode == ModeEditing {
		return "Save Changes"
	}
	return "Add Record"
}

// CanCancel reports whether the cancel-edit action is available.
func (c *Controller) CanCancel() bool { return c.mode == ModeEditing }

// Edit loads the record with id into the form. Unknown ids leave every piece
// of state untouched and return false.
func (c *Controller) Edit(id int64) bool {
	r, ok := c.store.FindByID(id)
	if !ok {
		c.log.Debug("edit ignored, no such record", zap.Int64("id", id))
		return false
	}
	c.Fields = Fields{
		Name:  r.Name,
		Value: FormatValue(r.Value),
		Phone: r.Phone,
	}
	c.editingID = r.ID
	c.mode = ModeEditing
	return true
}

// CancelEdit discards the edit in progress and returns to ModeAdd.
func (c *Controller) CancelEdit() {
	c.reset()
}

// reset clears the inputs and ends any edit.
func (c *Controller) reset() {
	c.Fields = Fields{}
	c.editingID = 0
	c.mode = ModeAdd
}

// Submit validates Fields and applies them. A *ValidationError leaves every
// piece of state unchanged. A storage error is returned wrapped after the
// in-memory change and the form reset have happened.
func (c *Controller) Submit() (Outcome, error) {
	in, err := Validate(c.Fields, c.requirePhone)
	if err != nil {
		c.log.Debug("submit rejected", zap.Stringer("mode", c.mode), zap.Error(err))
		return Outcome{}, err
	}

	if c.mode == ModeEditing {
		return c.commitEdit(in)
	}

	rec, err := c.store.Add(model.Record{Name: in.Name, Value: in.Value, Phone: in.Phone})
	c.reset()
	if err != nil {
		return Outcome{Created: true, Record: rec}, fmt.Errorf("add record: %w", err)
	}
	return Outcome{Created: true, Record: rec}, nil
}

func (c *Controller) commitEdit(in Input) (Outcome, error) {
	id := c.editingID
	existing, found := c.store.FindByID(id)
	c.reset()
	if !found {
		c.log.Debug("edit target vanished", zap.Int64("id", id))
		return Outcome{}, nil
	}

	phone := in.Phone
	if !c.requirePhone {
		phone = existing.Phone
	}
	_, err := c.store.Update(id, in.Name, in.Value, phone)
	out := Outcome{Record: model.Record{ID: id, Name: in.Name, Value: in.Value, Phone: phone}}
	if err != nil {
		return out, fmt.Errorf("update record %d: %w", id, err)
	}
	return out, nil
}

// RequestDelete asks for confirmation before removing id. Unknown ids are
// ignored and return false.
func (c *Controller) RequestDelete(id int64) bool {
	if _, ok := c.store.FindByID(id); !ok {
		c.log.Debug("delete ignored, no such record", zap.Int64("id", id))
		return false
	}
	c.pendingDeleteID = id
	c.pending = true
	return true
}

// ConfirmDelete removes the pending record and dismisses the prompt. It
// reports whether a record was removed.
func (c *Controller) ConfirmDelete() (bool, error) {
	if !c.pending {
		return false, nil
	}
	id := c.pendingDeleteID
	c.clearPending()

	removed, err := c.store.Remove(id)
	if removed && c.mode == ModeEditing && c.editingID == id {
		c.reset()
	}
	if err != nil {
		return removed, fmt.Errorf("remove record %d: %w", id, err)
	}
	return removed, nil
}

// CancelDelete dismisses the prompt without touching data.
func (c *Controller) CancelDelete() {
	c.clearPending()
}

func (c *Controller) clearPending() {
	c.pendingDeleteID = 0
	c.pending = false
}
