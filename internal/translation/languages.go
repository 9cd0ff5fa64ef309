package translation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// nameMatchThreshold is the Jaro-Winkler score a misspelt language name needs
const nameMatchThreshold = 0.88

// languages maps target codes to display names
var languages = map[string]string{
	"af":    "afrikaans",
	"sq":    "albanian",
	"am":    "amharic",
	"ar":    "arabic",
	"hy":    "armenian",
	"az":    "azerbaijani",
	"eu":    "basque",
	"be":    "belarusian",
	"bn":    "bengali",
	"bs":    "bosnian",
	"bg":    "bulgarian",
	"ca":    "catalan",
	"ceb":   "cebuano",
	"ny":    "chichewa",
	"zh-cn": "chinese (simplified)",
	"zh-tw": "chinese (traditional)",
	"co":    "corsican",
	"hr":    "croatian",
	"cs":    "czech",
	"da":    "danish",
	"nl":    "dutch",
	"en":    "english",
	"eo":    "esperanto",
	"et":    "estonian",
	"tl":    "filipino",
	"fi":    "finnish",
	"fr":    "french",
	"fy":    "frisian",
	"gl":    "galician",
	"ka":    "georgian",
	"de":    "german",
	"el":    "greek",
	"gu":    "gujarati",
	"ht":    "haitian creole",
	"ha":    "hausa",
	"haw":   "hawaiian",
	"iw":    "hebrew",
	"he":    "hebrew",
	"hi":    "hindi",
	"hmn":   "hmong",
	"hu":    "hungarian",
	"is":    "icelandic",
	"ig":    "igbo",
	"id":    "indonesian",
	"ga":    "irish",
	"it":    "italian",
	"ja":    "japanese",
	"jw":    "javanese",
	"kn":    "kannada",
	"kk":    "kazakh",
	"km":    "khmer",
	"ko":    "korean",
	"ku":    "kurdish (kurmanji)",
	"ky":    "kyrgyz",
	"lo":    "lao",
	"la":    "latin",
	"lv":    "latvian",
	"lt":    "lithuanian",
	"lb":    "luxembourgish",
	"mk":    "macedonian",
	"mg":    "malagasy",
	"ms":    "malay",
	"ml":    "malayalam",
	"mt":    "maltese",
	"mi":    "maori",
	"mr":    "marathi",
	"mn":    "mongolian",
	"my":    "myanmar (burmese)",
	"ne":    "nepali",
	"no":    "norwegian",
	"or":    "odia",
	"ps":    "pashto",
	"fa":    "persian",
	"pl":    "polish",
	"pt":    "portuguese",
	"pa":    "punjabi",
	"ro":    "romanian",
	"ru":    "russian",
	"sm":    "samoan",
	"gd":    "scots gaelic",
	"sr":    "serbian",
	"st":    "sesotho",
	"sn":    "shona",
	"sd":    "sindhi",
	"si":    "sinhala",
	"sk":    "slovak",
	"sl":    "slovenian",
	"so":    "somali",
	"es":    "spanish",
	"su":    "sundanese",
	"sw":    "swahili",
	"sv":    "swedish",
	"tg":    "tajik",
	"ta":    "tamil",
	"te":    "telugu",
	"th":    "thai",
	"tr":    "turkish",
	"uk":    "ukrainian",
	"ur":    "urdu",
	"ug":    "uyghur",
	"uz":    "uzbek",
	"vi":    "vietnamese",
	"cy":    "welsh",
	"xh":    "xhosa",
	"yi":    "yiddish",
	"yo":    "yoruba",
	"zu":    "zulu",
}

// Language is one supported target language
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportedLanguages returns every supported target, ordered by code
func SupportedLanguages() []Language {
	out := make([]Language, 0, len(languages))
	for code, name := range languages {
		out = append(out, Language{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ValidateLanguage reports whether code is a supported target
func ValidateLanguage(code string) bool {
	_, ok := languages[strings.ToLower(code)]
	return ok
}

// LanguageName returns the display name for code, or "unknown"
func LanguageName(code string) string {
	if name, ok := languages[strings.ToLower(code)]; ok {
		return name
	}
	return "unknown"
}

// ResolveLanguage turns a code or a language name into a supported code.
// Names may be misspelt slightly ("portugese"). Codes must be exact.
func ResolveLanguage(input string) (string, error) {
	in := strings.ToLower(strings.TrimSpace(input))
	if _, ok := languages[in]; ok {
		return in, nil
	}

	// Ordered by code, so a name shared by two codes resolves to the smaller one
	supported := SupportedLanguages()
	for _, lang := range supported {
		if lang.Name == in {
			return lang.Code, nil
		}
	}
	if len(in) < 4 {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, input)
	}

	best, bestScore := "", 0.0
	for _, lang := range supported {
		if score := matchr.JaroWinkler(in, lang.Name, false); score > bestScore {
			best, bestScore = lang.Code, score
		}
	}
	if bestScore < nameMatchThreshold {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, input)
	}
	return best, nil
}
