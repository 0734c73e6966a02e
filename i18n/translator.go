package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional values to embed in the message (for example,
// "got" or "want"); placeholders are written as {key}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var catalog = map[string]map[string]string{
	"en": {
		"attribute_count":     "attribute name count {got} does not match {want} columns",
		"duplicate_name":      "attribute name is not unique",
		"invalid_name":        "name is empty or contains control characters",
		"relational":          "relational attributes are not supported",
		"bad_dimension":       "array dimension must be positive",
		"bad_schema":          "invalid schema",
		"date_format":         "unusable date format",
		"unknown_nominal_key": "nominal option names an unknown attribute",
		"unknown_date_key":    "date format option names an unknown date attribute",
		"weights_length":      "weights length {got} does not match {want} rows",
		"file_format":         "file format must be dense or sparse",
		"invalid_option":      "invalid option",
		"nominal_value":       "value {got} is not in the nominal alphabet",
		"coerce":              "value {got} cannot be written as {want}",
		"non_finite":          "non-finite value {got}",
		"source_index":        "source yielded column {got} out of order or range",
		"write_failed":        "write failed",
	},
	"ja": {
		"attribute_count":     "属性名の数 {got} が列数 {want} と一致しません",
		"duplicate_name":      "属性名が重複しています",
		"invalid_name":        "名前が空か制御文字を含んでいます",
		"relational":          "relational 属性はサポートされていません",
		"bad_dimension":       "配列の次元は正でなければなりません",
		"bad_schema":          "スキーマが不正です",
		"date_format":         "日付フォーマットが使用できません",
		"unknown_nominal_key": "nominal 指定が未知の属性を参照しています",
		"unknown_date_key":    "日付フォーマット指定が未知の日付属性を参照しています",
		"weights_length":      "重みの数 {got} が行数 {want} と一致しません",
		"file_format":         "ファイル形式は dense か sparse です",
		"invalid_option":      "オプションが不正です",
		"nominal_value":       "値 {got} は nominal の値集合にありません",
		"coerce":              "値 {got} を {want} として書き出せません",
		"non_finite":          "有限でない値 {got}",
		"source_index":        "ソースが範囲外または順序不正の列 {got} を返しました",
		"write_failed":        "書き込みに失敗しました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := catalog[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
