package template

// SupportedLanguages are the template language codes accepted by WhatsApp
var SupportedLanguages = []string{
	"af", "sq", "ar", "az", "bn", "bg", "ca", "zh_CN", "zh_HK", "zh_TW",
	"hr", "cs", "da", "nl", "en", "en_GB", "en_US", "et", "fil", "fi",
	"fr", "ka", "de", "el", "gu", "ha", "he", "hi", "hu", "id",
	"ga", "it", "ja", "kn", "kk", "rw_RW", "ko", "ky_KG", "lo", "lv",
	"lt", "mk", "ms", "ml", "mr", "nb", "fa", "pl", "pt_BR", "pt_PT",
	"pa", "ro", "ru", "sr", "sk", "sl", "es", "es_AR", "es_ES", "es_MX",
	"sw", "sv", "ta", "te", "th", "tr", "uk", "ur", "uz", "vi",
	"zu",
}

var supportedLanguageSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(SupportedLanguages))
	for _, code := range SupportedLanguages {
		set[code] = struct{}{}
	}
	return set
}()

// IsSupportedLanguage reports whether code is a WhatsApp template language
func IsSupportedLanguage(code string) bool {
	_, ok := supportedLanguageSet[code]
	return ok
}
