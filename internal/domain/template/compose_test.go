package template

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	calls    int
	mimeType string
	data     []byte
	handle   string
	err      error
}

func (f *fakeUploader) UploadHeaderMedia(_ context.Context, mimeType string, data []byte) (string, error) {
	f.calls++
	f.mimeType = mimeType
	f.data = data
	return f.handle, f.err
}

func body(text string) map[string]any {
	return map[string]any{"type": "BODY", "text": text}
}

func TestParseDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	media, err := ParseDataURI("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", media.MimeType)
	assert.Equal(t, []byte("png-bytes"), media.Data)

	for _, bad := range []string{"", "image/png;base64,abc", "data:;base64,abc", "data:image/png,abc", "data:image/png;base64,%%%"} {
		_, err := ParseDataURI(bad)
		assert.ErrorIs(t, err, ErrInvalidMedia, bad)
	}
}

func TestComposer_BodyOnly(t *testing.T) {
	c := NewComposer(CategoryMarketing, nil)

	components, err := c.Compose(context.Background(), TranslationRequest{
		Language: "pt_BR",
		Body:     body("Hello {{1}}"),
	})
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, "BODY", components[0]["type"])
}

func TestComposer_ComponentOrder(t *testing.T) {
	c := NewComposer(CategoryUtility, nil)

	components, err := c.Compose(context.Background(), TranslationRequest{
		Language: "en_US",
		Header:   &HeaderInput{Text: "Order update"},
		Body:     body("Your order shipped"),
		Footer:   map[string]any{"type": "FOOTER", "text": "Thanks"},
		Buttons:  []ButtonInput{{ButtonType: "QUICK_REPLY", Text: "OK"}},
	})
	require.NoError(t, err)
	require.Len(t, components, 4)

	assert.Equal(t, "BODY", components[0]["type"])
	assert.Equal(t, "HEADER", components[1]["type"])
	assert.Equal(t, HeaderText, components[1]["format"])
	assert.Equal(t, "Order update", components[1]["text"])
	assert.Equal(t, "FOOTER", components[2]["type"])
	assert.Equal(t, "BUTTONS", components[3]["type"])

	buttons := components[3]["buttons"].([]Component)
	require.Len(t, buttons, 1)
	assert.Equal(t, Component{"type": "QUICK_REPLY", "text": "OK"}, buttons[0])
}

func TestComposer_ImageHeaderUsesUploadHandle(t *testing.T) {
	uploader := &fakeUploader{handle: "4::aGFuZGxl"}
	c := NewComposer(CategoryMarketing, uploader)
	raw := []byte{0x89, 'P', 'N', 'G'}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	components, err := c.Compose(context.Background(), TranslationRequest{
		Language: "en",
		Header:   &HeaderInput{HeaderType: "IMAGE", Example: uri},
		Body:     body("Look"),
	})
	require.NoError(t, err)
	require.Len(t, components, 2)

	header := components[1]
	assert.Equal(t, HeaderImage, header["format"])
	assert.Equal(t, map[string]any{"header_handle": "4::aGFuZGxl"}, header["example"])
	assert.NotContains(t, header, "header_type")

	assert.Equal(t, 1, uploader.calls)
	assert.Equal(t, "image/png", uploader.mimeType)
	assert.Equal(t, raw, uploader.data)
}

func TestComposer_UploadFailureIsReturned(t *testing.T) {
	uploadErr := errors.New("upload rejected")
	c := NewComposer(CategoryMarketing, &fakeUploader{err: uploadErr})

	_, err := c.Compose(context.Background(), TranslationRequest{
		Language: "en",
		Header:   &HeaderInput{HeaderType: "VIDEO", Example: "data:video/mp4;base64,AAAA"},
		Body:     body("Watch"),
	})
	assert.ErrorIs(t, err, uploadErr)
}

func TestComposer_OTPButtons(t *testing.T) {
	t.Run("copy code is minimal", func(t *testing.T) {
		c := NewComposer(CategoryAuthentication, nil)
		components, err := c.Compose(context.Background(), TranslationRequest{
			Language: "en",
			Body:     body("{{1}} is your code"),
			Buttons:  []ButtonInput{{ButtonType: "OTP", OTPType: OTPCopyCode, Text: "Copy"}},
		})
		require.NoError(t, err)
		buttons := components[1]["buttons"].([]Component)
		assert.Equal(t, Component{"type": "OTP", "otp_type": "COPY_CODE"}, buttons[0])
	})

	t.Run("one tap carries app fields", func(t *testing.T) {
		c := NewComposer(CategoryAuthentication, nil)
		components, err := c.Compose(context.Background(), TranslationRequest{
			Language: "en",
			Body:     body("{{1}} is your code"),
			Buttons: []ButtonInput{{
				ButtonType:    "OTP",
				OTPType:       OTPOneTap,
				PackageName:   "com.example.app",
				SignatureHash: "K8a/AINcGX7",
				AutofillText:  "Autofill",
			}},
		})
		require.NoError(t, err)
		buttons := components[1]["buttons"].([]Component)
		assert.Equal(t, Component{
			"type":           "OTP",
			"otp_type":       "ONE_TAP",
			"package_name":   "com.example.app",
			"signature_hash": "K8a/AINcGX7",
			"autofill_text":  "Autofill",
		}, buttons[0])
	})

	t.Run("one tap without signature hash fails before upload", func(t *testing.T) {
		uploader := &fakeUploader{handle: "h"}
		c := NewComposer(CategoryAuthentication, uploader)
		_, err := c.Compose(context.Background(), TranslationRequest{
			Language: "en",
			Header:   &HeaderInput{HeaderType: "IMAGE", Example: "data:image/png;base64,AAAA"},
			Body:     body("{{1}} is your code"),
			Buttons:  []ButtonInput{{ButtonType: "OTP", OTPType: OTPOneTap, PackageName: "com.example.app"}},
		})
		assert.ErrorIs(t, err, ErrOneTapFieldsRequired)
		assert.Equal(t, 0, uploader.calls)
	})

	t.Run("otp outside authentication is a regular button", func(t *testing.T) {
		c := NewComposer(CategoryMarketing, nil)
		components, err := c.Compose(context.Background(), TranslationRequest{
			Language: "en",
			Body:     body("hi"),
			Buttons:  []ButtonInput{{ButtonType: "OTP", OTPType: OTPOneTap}},
		})
		require.NoError(t, err)
		buttons := components[1]["buttons"].([]Component)
		assert.Equal(t, Component{"type": "OTP", "otp_type": "ONE_TAP"}, buttons[0])
	})
}

func TestComposer_PhoneNumberButton(t *testing.T) {
	c := NewComposer(CategoryMarketing, nil)

	components, err := c.Compose(context.Background(), TranslationRequest{
		Language: "pt_BR",
		Body:     body("Call us"),
		Buttons:  []ButtonInput{{ButtonType: "PHONE_NUMBER", Text: "Call", CountryCode: "55", PhoneNumber: "82988887777"}},
	})
	require.NoError(t, err)

	buttons := components[1]["buttons"].([]Component)
	assert.Equal(t, Component{
		"type":         "PHONE_NUMBER",
		"text":         "Call",
		"phone_number": "+55 82988887777",
	}, buttons[0])
	assert.NotContains(t, buttons[0], "country_code")
	assert.NotContains(t, buttons[0], "button_type")
}

func TestComposer_Validate(t *testing.T) {
	c := NewComposer(CategoryMarketing, nil)

	tests := []struct {
		name string
		req  TranslationRequest
	}{
		{"missing language", TranslationRequest{Body: body("x")}},
		{"unsupported language", TranslationRequest{Language: "xx_YY", Body: body("x")}},
		{"missing body", TranslationRequest{Language: "en"}},
		{"unknown header", TranslationRequest{Language: "en", Body: body("x"), Header: &HeaderInput{HeaderType: "GIF"}}},
		{"bad media", TranslationRequest{Language: "en", Body: body("x"), Header: &HeaderInput{HeaderType: "DOCUMENT", Example: "not-a-uri"}}},
		{"phone without country", TranslationRequest{Language: "en", Body: body("x"), Buttons: []ButtonInput{{ButtonType: "PHONE_NUMBER", PhoneNumber: "1"}}}},
		{"button without type", TranslationRequest{Language: "en", Body: body("x"), Buttons: []ButtonInput{{Text: "x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, c.Validate(tt.req))
		})
	}
}

func TestNewTranslation(t *testing.T) {
	templateID := uuid.New()
	req := TranslationRequest{
		Language: "pt_BR",
		Header:   &HeaderInput{HeaderType: "IMAGE", Example: "data:image/png;base64,AAAA"},
		Body:     body("Oi"),
		Footer:   map[string]any{"type": "FOOTER", "text": "Tchau"},
		Buttons:  []ButtonInput{{ButtonType: "URL", Text: "Site", URL: "https://example.com"}},
	}

	tr := NewTranslation(templateID, req, "1234")
	assert.Equal(t, StatusPending, tr.Status)
	assert.Equal(t, DefaultCountry, tr.Country)
	assert.Equal(t, "Oi", tr.Body)
	assert.Equal(t, "Tchau", tr.Footer)
	assert.Equal(t, 0, tr.VariableCount)
	assert.Equal(t, "1234", tr.MessageTemplateID)
	require.NotNil(t, tr.Header)
	assert.Equal(t, "IMAGE", tr.Header.HeaderType)
	assert.Equal(t, tr.ID, tr.Header.TranslationID)
	require.Len(t, tr.Buttons, 1)
	assert.Equal(t, "https://example.com", tr.Buttons[0].URL)
}

func TestNewMessage(t *testing.T) {
	appID := uuid.New()

	m, err := NewMessage(appID, "order_update", "utility", "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, CategoryUtility, m.Category)
	assert.Equal(t, TemplateTypeText, m.TemplateType)
	assert.Equal(t, "", m.TextPreview())

	_, err = NewMessage(appID, "Order Update", CategoryUtility, "")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = NewMessage(appID, "order_update", Category("SPAM"), "")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = NewMessage(uuid.Nil, "order_update", CategoryUtility, "")
	assert.Error(t, err)
}
