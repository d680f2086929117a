package services

import (
	"database/sql"
	"testing"

	"pastehub/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroadcaster struct {
	textIDs []int
	fields  []models.UpdateFields
}

func (f *fakeBroadcaster) BroadcastEdit(textID int, fields models.UpdateFields) {
	f.textIDs = append(f.textIDs, textID)
	f.fields = append(f.fields, fields)
}

func TestTextCreateAssignsShareableID(t *testing.T) {
	texts := &stubTexts{}
	svc := NewTextService(texts, &fakeBroadcaster{})

	created, err := svc.Create(models.CreateTextRequest{Title: "notes", Content: "hello"}, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ShareableID)
	assert.Equal(t, 1, created.AuthorID)
}

func TestTextUpdateBroadcastsNewFields(t *testing.T) {
	texts := &stubTexts{text: publishedText(), author: "alice"}
	bc := &fakeBroadcaster{}
	svc := NewTextService(texts, bc)

	title := "revised"
	published := false
	_, err := svc.Update(7, 1, models.UpdateTextRequest{Title: &title, Published: &published})
	require.NoError(t, err)

	require.Len(t, bc.fields, 1)
	assert.Equal(t, 7, bc.textIDs[0])

	got := bc.fields[0]
	require.NotNil(t, got.Title)
	assert.Equal(t, "revised", *got.Title)
	require.NotNil(t, got.Published)
	assert.False(t, *got.Published)
	assert.Nil(t, got.Content)
	assert.Equal(t, "abc-123", got.ShareableID)
}

func TestTextUpdateForbiddenForNonOwner(t *testing.T) {
	texts := &stubTexts{text: publishedText(), author: "alice"}
	bc := &fakeBroadcaster{}
	svc := NewTextService(texts, bc)

	title := "revised"
	_, err := svc.Update(7, 99, models.UpdateTextRequest{Title: &title})
	require.ErrorIs(t, err, ErrForbidden)

	assert.Empty(t, texts.updates)
	assert.Empty(t, bc.fields)
}

func TestTextGetNotFound(t *testing.T) {
	texts := &stubTexts{getByIDErr: sql.ErrNoRows}
	svc := NewTextService(texts, &fakeBroadcaster{})

	_, err := svc.Get(7, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTextDeleteChecksOwnership(t *testing.T) {
	texts := &stubTexts{text: publishedText(), author: "alice"}
	svc := NewTextService(texts, &fakeBroadcaster{})

	require.ErrorIs(t, svc.Delete(7, 99), ErrForbidden)
	require.NoError(t, svc.Delete(7, 1))
}
