package i18n

import (
	"strings"
	"sync"
)

// Message codes used by the built-in validators.
const (
	CodePresence     = "presence"
	CodeAbsence      = "absence"
	CodeTooShort     = "too_short"
	CodeTooLong      = "too_long"
	CodeWrongLength  = "wrong_length"
	CodeInvalid      = "invalid"
	CodeInclusion    = "inclusion"
	CodeExclusion    = "exclusion"
	CodeNotANumber   = "not_a_number"
	CodeNotAnInteger = "not_an_integer"
	CodeGreaterThan  = "greater_than"
	CodeGreaterEqual = "greater_than_or_equal_to"
	CodeLessThan     = "less_than"
	CodeLessEqual    = "less_than_or_equal_to"
	CodeEqualTo      = "equal_to"
	CodeTaken        = "taken"
	CodeNotAList     = "not_a_list"
	CodeDuplicate    = "duplicate"
)

// Translator retrieves localized messages for message codes.
// data fills {placeholders} in the message (for example "count").
type Translator interface {
	Message(code string, data map[string]string) string
}

var catalogs = map[string]map[string]string{
	"en": {
		CodePresence:     "is required",
		CodeAbsence:      "must be blank",
		CodeTooShort:     "is too short (minimum is {count})",
		CodeTooLong:      "is too long (maximum is {count})",
		CodeWrongLength:  "is the wrong length (should be {count})",
		CodeInvalid:      "is invalid",
		CodeInclusion:    "is not included in the list",
		CodeExclusion:    "is reserved",
		CodeNotANumber:   "is not a number",
		CodeNotAnInteger: "must be an integer",
		CodeGreaterThan:  "must be greater than {count}",
		CodeGreaterEqual: "must be greater than or equal to {count}",
		CodeLessThan:     "must be less than {count}",
		CodeLessEqual:    "must be less than or equal to {count}",
		CodeEqualTo:      "must be equal to {count}",
		CodeTaken:        "has already been taken",
		CodeNotAList:     "must be a list",
		CodeDuplicate:    "has duplicate entries",
	},
	"ja": {
		CodePresence:     "必須です",
		CodeAbsence:      "空でなければなりません",
		CodeTooShort:     "短すぎます（最小 {count}）",
		CodeTooLong:      "長すぎます（最大 {count}）",
		CodeWrongLength:  "長さが正しくありません（{count} であるべきです）",
		CodeInvalid:      "不正な値です",
		CodeInclusion:    "一覧にありません",
		CodeExclusion:    "予約されています",
		CodeNotANumber:   "数値ではありません",
		CodeNotAnInteger: "整数でなければなりません",
		CodeGreaterThan:  "{count} より大きくなければなりません",
		CodeGreaterEqual: "{count} 以上でなければなりません",
		CodeLessThan:     "{count} より小さくなければなりません",
		CodeLessEqual:    "{count} 以下でなければなりません",
		CodeEqualTo:      "{count} と等しくなければなりません",
		CodeTaken:        "既に使用されています",
		CodeNotAList:     "リストでなければなりません",
		CodeDuplicate:    "重複した要素があります",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := catalogs[t.lang][code]
	if !ok {
		msg, ok = catalogs["en"][code]
	}
	if !ok {
		return code
	}
	return fill(msg, data)
}

func fill(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := catalogs[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation; nil restores the
// English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
