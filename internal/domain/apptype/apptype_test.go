package apptype

import (
	"testing"

	"github.com/marketplace/backend/internal/domain/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lookup(t *testing.T) {
	r := DefaultRegistry()

	for _, code := range []string{"wwc", "tg", "wpp-demo", "wpp", "wpp-cloud", "generic", "omie", "vtex"} {
		t.Run(code, func(t *testing.T) {
			typ, err := r.Lookup(code)
			require.NoError(t, err)
			assert.Equal(t, Code(code), typ.Descriptor().Code)
		})
	}

	t.Run("blank code fails closed", func(t *testing.T) {
		typ, err := r.Lookup("   ")
		assert.Nil(t, typ)
		assert.ErrorIs(t, err, ErrBlankAppType)
	})

	t.Run("unknown code fails closed", func(t *testing.T) {
		typ, err := r.Lookup("signal")
		assert.Nil(t, typ)
		assert.Equal(t, ErrUnknownAppType, err)
	})
}

func TestRegistry_ListKeepsOrderAndIgnoresDuplicates(t *testing.T) {
	r := NewRegistry(Telegram, WebChat, Telegram)
	types := r.List()
	require.Len(t, types, 2)
	assert.Equal(t, CodeTelegram, types[0].Descriptor().Code)
	assert.Equal(t, CodeWebChat, types[1].Descriptor().Code)
}

func TestRegistry_ByChannelTypeCode(t *testing.T) {
	r := DefaultRegistry()

	typ, ok := r.ByChannelTypeCode("WA")
	require.True(t, ok)
	assert.Equal(t, CodeWhatsApp, typ.Descriptor().Code)

	typ, ok = r.ByChannelTypeCode("wac")
	require.True(t, ok)
	assert.Equal(t, CodeWhatsAppCloud, typ.Descriptor().Code)

	typ, ok = r.ByChannelTypeCode("TG")
	require.True(t, ok)
	assert.Equal(t, CodeTelegram, typ.Descriptor().Code)

	_, ok = r.ByChannelTypeCode("XYZ")
	assert.False(t, ok)

	_, ok = r.ByChannelTypeCode("")
	assert.False(t, ok, "types without a fixed channel type never match")
}

func TestGenericChannelType(t *testing.T) {
	d := Generic.Descriptor()
	assert.Equal(t, ProvisionGenericChannel, d.Provision)
	assert.Equal(t, app.PlatformWeniFlows, d.Platform)
	assert.Empty(t, d.ChannelTypeCode)
	assert.True(t, d.Deletable)

	cfg, err := ValidateConfig(Generic, app.Config{})
	require.NoError(t, err)
	assert.Empty(t, cfg.(GenericChannelConfig).ChannelCode)

	cfg, err = ValidateConfig(Generic, app.Config{"channel_code": "AC", "title": "Support"})
	require.NoError(t, err)
	assert.Equal(t, "AC", cfg.(GenericChannelConfig).ChannelCode)
}

func TestWhatsAppCloudIsNotDeletable(t *testing.T) {
	assert.False(t, WhatsAppCloud.Descriptor().Deletable)
	assert.True(t, Telegram.Descriptor().Deletable)
}

func TestValidateConfig(t *testing.T) {
	t.Run("telegram requires token", func(t *testing.T) {
		_, err := ValidateConfig(Telegram, app.Config{"title": "bot"})
		assert.Error(t, err)

		cfg, err := ValidateConfig(Telegram, app.Config{"token": "123:abc"})
		require.NoError(t, err)
		assert.Equal(t, "123:abc", cfg.(TelegramConfig).Token)
	})

	t.Run("omie requires credentials", func(t *testing.T) {
		_, err := ValidateConfig(Omie, app.Config{"app_key": "k"})
		assert.Error(t, err)

		_, err = ValidateConfig(Omie, app.Config{"app_key": "k", "app_secret": "s"})
		assert.NoError(t, err)
	})

	t.Run("wrong field type is a validation error", func(t *testing.T) {
		_, err := ValidateConfig(Telegram, app.Config{"token": 42})
		assert.Error(t, err)
	})
}

func TestWABAID(t *testing.T) {
	assert.Equal(t, "111", WABAID(app.Config{"wa_waba_id": "111", "waba": map[string]any{"id": "222"}}))
	assert.Equal(t, "222", WABAID(app.Config{"waba": map[string]any{"id": "222"}}))
	assert.Equal(t, "", WABAID(app.Config{}))
}

func TestDecodeWhatsAppCloud(t *testing.T) {
	cfg, err := DecodeWhatsAppCloud(app.Config{
		"wa_waba_id":     "waba",
		"wa_business_id": "biz",
		"catalogs":       []any{map[string]any{"facebook_catalog_id": "c1"}},
		"unrelated":      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "waba", cfg.WAWabaID)
	assert.Equal(t, "biz", cfg.WABusinessID)
	assert.True(t, cfg.HasCatalog("c1"))
	assert.False(t, cfg.HasCatalog("c2"))
}
