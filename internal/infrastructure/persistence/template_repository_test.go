package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTemplateRepository_Translations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTemplateRepository(db)
	ctx := context.Background()

	a := newTestApp(t, db, "wpp-cloud", uuid.New())
	m := newTestTemplate(t, db, a.ID, "order_update", "creator@example.com")

	tr := template.NewTranslation(m.ID, template.TranslationRequest{
		Language: "en_US",
		Country:  "USA",
		Header:   &template.HeaderInput{HeaderType: template.HeaderText, Text: "Order"},
		Body:     map[string]any{"type": "BODY", "text": "Your order shipped"},
		Footer:   map[string]any{"type": "FOOTER", "text": "Thanks"},
		Buttons: []template.ButtonInput{
			{ButtonType: "URL", Text: "Track", URL: "https://example.com/{{1}}"},
			{ButtonType: "PHONE_NUMBER", Text: "Call", CountryCode: "55", PhoneNumber: "11999999999"},
		},
	}, "987654")
	require.NoError(t, repo.CreateTranslation(ctx, tr))

	found, err := repo.FindByID(ctx, a.ID, m.ID)
	require.NoError(t, err)
	require.Len(t, found.Translations, 1)

	got := found.Translations[0]
	assert.Equal(t, "en_US", got.Language)
	assert.Equal(t, "USA", got.Country)
	assert.Equal(t, template.StatusPending, got.Status)
	assert.Equal(t, "987654", got.MessageTemplateID)
	assert.Equal(t, "Your order shipped", got.Body)
	assert.Equal(t, "Thanks", got.Footer)
	require.NotNil(t, got.Header)
	assert.Equal(t, "Order", got.Header.Text)
	require.Len(t, got.Buttons, 2)
	assert.Equal(t, "Your order shipped", found.TextPreview())

	_, err = repo.FindByID(ctx, uuid.New(), m.ID)
	assert.ErrorIs(t, err, template.ErrTemplateNotFound)
}

func TestGormTemplateRepository_ExistsByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTemplateRepository(db)
	ctx := context.Background()

	a := newTestApp(t, db, "wpp", uuid.New())
	newTestTemplate(t, db, a.ID, "promo", "creator@example.com")

	exists, err := repo.ExistsByName(ctx, a.ID, "promo")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByName(ctx, a.ID, "other")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByName(ctx, uuid.New(), "promo")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormTemplateRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTemplateRepository(db)
	ctx := context.Background()

	a := newTestApp(t, db, "wpp-cloud", uuid.New())
	newTestTemplate(t, db, a.ID, "promo_summer", "zed@example.com")
	newTestTemplate(t, db, a.ID, "promo_winter", "amy@example.com")
	newTestTemplate(t, db, a.ID, "receipt", "bob@example.com")
	newTestTemplate(t, db, newTestApp(t, db, "wpp-cloud", uuid.New()).ID, "promo_other", "amy@example.com")

	t.Run("ordered by creator", func(t *testing.T) {
		items, total, err := repo.FindAll(ctx, template.Filter{AppID: a.ID}, shared.PageRequest{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.Len(t, items, 3)
		assert.Equal(t, "amy@example.com", items[0].CreatedBy)
		assert.Equal(t, "bob@example.com", items[1].CreatedBy)
		assert.Equal(t, "zed@example.com", items[2].CreatedBy)
	})

	t.Run("name filter and paging", func(t *testing.T) {
		items, total, err := repo.FindAll(ctx, template.Filter{AppID: a.ID, Name: "PROMO"}, shared.PageRequest{Page: 2, PageSize: 1})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, items, 1)
		assert.Equal(t, "promo_summer", items[0].Name)
	})

	t.Run("category filter", func(t *testing.T) {
		_, total, err := repo.FindAll(ctx, template.Filter{AppID: a.ID, Category: template.CategoryMarketing}, shared.PageRequest{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestGormTemplateRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTemplateRepository(db)
	ctx := context.Background()

	a := newTestApp(t, db, "wpp-cloud", uuid.New())
	m := newTestTemplate(t, db, a.ID, "bye", "creator@example.com")
	require.NoError(t, repo.CreateTranslation(ctx, template.NewTranslation(m.ID, template.TranslationRequest{
		Language: "es",
		Body:     map[string]any{"text": "Adios"},
		Buttons:  []template.ButtonInput{{ButtonType: "QUICK_REPLY", Text: "Ok"}},
	}, "1")))

	require.NoError(t, repo.Delete(ctx, m.ID))
	_, err := repo.FindByID(ctx, a.ID, m.ID)
	assert.ErrorIs(t, err, template.ErrTemplateNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, m.ID), template.ErrTemplateNotFound)
}
