package catalog

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// NoticeLevel is the severity of a user-facing notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a localized message for the client to show
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Message keys
const (
	MsgLoadFailed          = "load_failed"
	MsgHomeFailed          = "home_failed"
	MsgSearchQueryRequired = "search_query_required"
	MsgNoResults           = "no_results"
	MsgSearchFailed        = "search_failed"
	MsgDetailsFailed       = "details_failed"
	MsgFavoriteAdded       = "favorite_added"
	MsgFavoriteRemoved     = "favorite_removed"
	MsgFavoritesFull       = "favorites_full"
	MsgLanguageRequired    = "subtitle_language_required"
	MsgSubtitleDownloaded  = "subtitle_downloaded"
	MsgSubtitlesMissing    = "subtitles_missing"
	MsgNoPlayableSource    = "no_playable_source"

	GridTrending      = "grid_trending"
	GridNewReleases   = "grid_new_releases"
	GridPopularMovies = "grid_popular_movies"
	GridPopularTV     = "grid_popular_tv"
)

var messages = map[string][2]string{ // key -> {ar, en}
	MsgLoadFailed:          {"فشل تحميل البيانات", "Failed to load data"},
	MsgHomeFailed:          {"حدث خطأ في تحميل البيانات", "An error occurred while loading data"},
	MsgSearchQueryRequired: {"الرجاء إدخال كلمة البحث", "Please enter a search term"},
	MsgNoResults:           {"لم يتم العثور على نتائج", "No results found"},
	MsgSearchFailed:        {"فشل البحث", "Search failed"},
	MsgDetailsFailed:       {"فشل تحميل التفاصيل", "Failed to load details"},
	MsgFavoriteAdded:       {"تمت الإضافة للمفضلة", "Added to favorites"},
	MsgFavoriteRemoved:     {"تم الحذف من المفضلة", "Removed from favorites"},
	MsgFavoritesFull:       {"قائمة المفضلة ممتلئة", "Favorites list is full"},
	MsgLanguageRequired:    {"الرجاء اختيار لغة الترجمة", "Please choose a subtitle language"},
	MsgSubtitleDownloaded:  {"تم تحميل الترجمة بنجاح", "Subtitle downloaded"},
	MsgSubtitlesMissing:    {"الترجمة غير متوفرة", "Subtitles are not available"},
	MsgNoPlayableSource:    {"لا يوجد مصدر تشغيل متاح", "No playable source available"},

	GridTrending:      {"الأكثر رواجاً", "Trending"},
	GridNewReleases:   {"أحدث الإصدارات", "New releases"},
	GridPopularMovies: {"أفلام شائعة", "Popular movies"},
	GridPopularTV:     {"مسلسلات شائعة", "Popular TV shows"},
}

var messageCatalog = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range messages {
		_ = b.SetString(language.Arabic, key, text[0])
		_ = b.SetString(language.English, key, text[1])
	}
	return b
}()

// Localizer renders message keys in the site language. Arabic sites get
// Arabic text; everything else gets English.
type Localizer struct {
	printer *message.Printer
}

// NewLocalizer creates a localizer for a BCP 47 language code
func NewLocalizer(lang string) *Localizer {
	tag := language.English
	if t, err := language.Parse(lang); err == nil {
		if base, _ := t.Base(); base.String() == "ar" {
			tag = language.Arabic
		}
	}
	return &Localizer{printer: message.NewPrinter(tag, message.Catalog(messageCatalog))}
}

// Text returns the localized text for key
func (l *Localizer) Text(key string) string {
	return l.printer.Sprintf(message.Key(key, messages[key][1]))
}

// Notice builds a notice for key
func (l *Localizer) Notice(level NoticeLevel, key string) Notice {
	return Notice{Level: level, Message: l.Text(key)}
}
