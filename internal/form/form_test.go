package form

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/dashboard/internal/model"
	"github.com/Makepad-fr/dashboard/internal/storage/memstore"
	"github.com/Makepad-fr/dashboard/internal/store"
)

func newController(t *testing.T, recs ...model.Record) (*Controller, *store.Store) {
	t.Helper()
	kv := memstore.New()
	if recs == nil {
		recs = []model.Record{}
	}
	b, err := json.Marshal(recs)
	require.NoError(t, err)
	require.NoError(t, kv.SetItem(store.DefaultKey, string(b)))

	s := store.New(kv)
	s.Load()
	return New(s, Options{RequirePhone: true}), s
}

func sample() []model.Record {
	return []model.Record{
		{ID: 3, Name: "Three", Value: 30, Phone: "3333333333"},
		{ID: 7, Name: "Seven", Value: 100, Phone: "3331234567"},
		{ID: 9, Name: "Nine", Value: 90, Phone: "9999999999"},
	}
}

func TestInitialState(t *testing.T) {
	c, _ := newController(t)
	assert.Equal(t, ModeAdd, c.Mode())
	_, editing := c.EditingID()
	assert.False(t, editing)
	_, pending := c.PendingDeleteID()
	assert.False(t, pending)
	assert.Equal(t, "Add New Record", c.Title())
	assert.Equal(t, "Add Record", c.SubmitLabel())
	assert.False(t, c.CanCancel())
}

func TestAddSubmit(t *testing.T) {
	c, s := newController(t)
	c.Fields = Fields{Name: "Widget", Value: "42", Phone: "555 123 4567"}

	out, err := c.Submit()
	require.NoError(t, err)
	assert.True(t, out.Created)
	require.Equal(t, 1, s.Len())

	got := s.Records()[0]
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, 42.0, got.Value)
	assert.Equal(t, "5551234567", got.Phone)
	assert.Equal(t, got, out.Record)

	assert.Equal(t, ModeAdd, c.Mode())
	assert.Equal(t, Fields{}, c.Fields)
}

func TestAddSubmitAppendsAtEnd(t *testing.T) {
	c, s := newController(t, sample()...)
	c.Fields = Fields{Name: "Ten", Value: "10", Phone: "1010101010"}

	_, err := c.Submit()
	require.NoError(t, err)
	recs := s.Records()
	require.Len(t, recs, 4)
	assert.Equal(t, "Ten", recs[3].Name)
	assert.Equal(t, sample(), recs[:3])
}

func TestRejectedSubmitLeavesStateUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		field  Field
	}{
		{"empty name", Fields{Name: "", Value: "5", Phone: "5551234567"}, FieldName},
		{"negative value", Fields{Name: "Widget", Value: "-3", Phone: "5551234567"}, FieldValue},
		{"bad phone", Fields{Name: "Widget", Value: "3", Phone: "123"}, FieldPhone},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/add", func(t *testing.T) {
			c, s := newController(t, sample()...)
			c.Fields = tt.fields

			_, err := c.Submit()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, sample(), s.Records())
			assert.Equal(t, tt.fields, c.Fields)
			assert.Equal(t, ModeAdd, c.Mode())
		})
		t.Run(tt.name+"/editing", func(t *testing.T) {
			c, s := newController(t, sample()...)
			require.True(t, c.Edit(7))
			c.Fields = tt.fields

			_, err := c.Submit()
			require.True(t, IsValidation(err))
			assert.Equal(t, sample(), s.Records())
			id, editing := c.EditingID()
			assert.True(t, editing)
			assert.Equal(t, int64(7), id)
		})
	}
}

func TestEditPopulatesFields(t *testing.T) {
	c, _ := newController(t, sample()...)

	require.True(t, c.Edit(7))
	assert.Equal(t, ModeEditing, c.Mode())
	assert.Equal(t, Fields{Name: "Seven", Value: "100", Phone: "3331234567"}, c.Fields)
	assert.Equal(t, "Edit Record", c.Title())
	assert.Equal(t, "Save Changes", c.SubmitLabel())
	assert.True(t, c.CanCancel())
}

func TestEditUnknownIDIsNoop(t *testing.T) {
	c, _ := newController(t, sample()...)
	c.Fields = Fields{Name: "draft"}

	assert.False(t, c.Edit(42))
	assert.Equal(t, ModeAdd, c.Mode())
	assert.Equal(t, Fields{Name: "draft"}, c.Fields)
}

func TestEditWhileEditingSwitchesRecord(t *testing.T) {
	c, _ := newController(t, sample()...)
	require.True(t, c.Edit(7))
	require.True(t, c.Edit(9))

	id, _ := c.EditingID()
	assert.Equal(t, int64(9), id)
	assert.Equal(t, "Nine", c.Fields.Name)
}

func TestEditSubmitUpdatesInPlace(t *testing.T) {
	c, s := newController(t, sample()...)
	require.True(t, c.Edit(7))
	c.Fields.Value = "200"
	c.Fields.Name = "  Seven bis "

	out, err := c.Submit()
	require.NoError(t, err)
	assert.False(t, out.Created)

	recs := s.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, model.Record{ID: 7, Name: "Seven bis", Value: 200, Phone: "3331234567"}, recs[1])
	assert.Equal(t, recs[1], out.Record)

	assert.Equal(t, ModeAdd, c.Mode())
	assert.Equal(t, Fields{}, c.Fields)
	assert.Equal(t, "Add Record", c.SubmitLabel())
}

func TestEditThenCancelKeepsStoredValue(t *testing.T) {
	c, s := newController(t, sample()...)
	require.True(t, c.Edit(7))
	c.Fields.Value = "200"

	c.CancelEdit()

	r, ok := s.FindByID(7)
	require.True(t, ok)
	assert.Equal(t, 100.0, r.Value)
	assert.Equal(t, ModeAdd, c.Mode())
	assert.Equal(t, Fields{}, c.Fields)
}

func TestEditSubmitForVanishedRecord(t *testing.T) {
	c, s := newController(t, sample()...)
	require.True(t, c.Edit(7))
	_, err := s.Remove(7)
	require.NoError(t, err)

	c.Fields.Value = "1"
	out, err := c.Submit()
	require.NoError(t, err)
	assert.Equal(t, Outcome{}, out)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, ModeAdd, c.Mode())
}

func TestEditWithoutPhoneKeepsStoredPhone(t *testing.T) {
	kv := memstore.New()
	b, _ := json.Marshal(sample())
	require.NoError(t, kv.SetItem(store.DefaultKey, string(b)))
	s := store.New(kv)
	s.Load()
	c := New(s, Options{})

	require.True(t, c.Edit(7))
	c.Fields.Phone = ""
	c.Fields.Value = "5"
	_, err := c.Submit()
	require.NoError(t, err)

	r, _ := s.FindByID(7)
	assert.Equal(t, "3331234567", r.Phone)
	assert.Equal(t, 5.0, r.Value)
}

func TestDeleteConfirm(t *testing.T) {
	c, s := newController(t, sample()...)

	require.True(t, c.RequestDelete(7))
	assert.True(t, c.Prompting())
	id, pending := c.PendingDeleteID()
	assert.True(t, pending)
	assert.Equal(t, int64(7), id)

	removed, err := c.ConfirmDelete()
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 2, s.Len())
	_, ok := s.FindByID(7)
	assert.False(t, ok)
	assert.False(t, c.Prompting())
}

func TestDeleteCancel(t *testing.T) {
	c, s := newController(t, sample()...)
	require.True(t, c.RequestDelete(7))

	c.CancelDelete()
	assert.False(t, c.Prompting())
	assert.Equal(t, sample(), s.Records())

	// confirming after a cancel does nothing
	removed, err := c.ConfirmDelete()
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 3, s.Len())
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	c, s := newController(t, sample()...)
	assert.False(t, c.RequestDelete(42))
	assert.False(t, c.Prompting())
	assert.Equal(t, 3, s.Len())
}

func TestDeleteVanishedBeforeConfirm(t *testing.T) {
	c, s := newController(t, sample()...)
	require.True(t, c.RequestDelete(7))
	_, err := s.Remove(7)
	require.NoError(t, err)

	removed, err := c.ConfirmDelete()
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 2, s.Len())
	assert.False(t, c.Prompting())
}

func TestDeleteRecordBeingEditedEndsEdit(t *testing.T) {
	c, _ := newController(t, sample()...)
	require.True(t, c.Edit(7))
	require.True(t, c.RequestDelete(7))

	_, err := c.ConfirmDelete()
	require.NoError(t, err)
	assert.Equal(t, ModeAdd, c.Mode())
	assert.Equal(t, Fields{}, c.Fields)
}

func TestDeleteOtherRecordKeepsEdit(t *testing.T) {
	c, _ := newController(t, sample()...)
	require.True(t, c.Edit(7))
	require.True(t, c.RequestDelete(9))

	_, err := c.ConfirmDelete()
	require.NoError(t, err)
	id, editing := c.EditingID()
	assert.True(t, editing)
	assert.Equal(t, int64(7), id)
}

type failingStore struct {
	*store.Store
	err error
}

func (f failingStore) Add(r model.Record) (model.Record, error) {
	rec, _ := f.Store.Add(r)
	return rec, f.err
}

func TestSubmitStorageErrorIsWrapped(t *testing.T) {
	_, s := newController(t)
	boom := errors.New("quota exceeded")
	c := New(failingStore{Store: s, err: boom}, Options{RequirePhone: true})
	c.Fields = Fields{Name: "Widget", Value: "42", Phone: "5551234567"}

	_, err := c.Submit()
	require.ErrorIs(t, err, boom)
	assert.False(t, IsValidation(err))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, Fields{}, c.Fields)
}
