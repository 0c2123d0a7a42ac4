package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "parse_error":
			return "解析エラー"
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須フィールドが不足しています"
		case "unknown_key":
			return "未知のキーです"
		case "duplicate_key":
			return "キーが重複しています"
		case "overflow":
			return "値が範囲外です"
		case "unknown_type":
			return "未知の型です"
		case "arity":
			return "フィールド数が一致しません"
		case "named_list_item":
			return "リスト要素に名前は付けられません"
		case "unnamed_map_item":
			return "マップ要素には名前が必要です"
		case "bad_declaration":
			return "宣言が不正です"
		case "bad_argument":
			return "引数が不正です"
		case "bad_expand":
			return "expand の対象が不正です"
		case "unknown_import":
			return "未知のインポートです"
		case "unknown_export":
			return "未知のエクスポートです"
		case "depth_exceeded":
			return "展開が深すぎます"
		case "empty_document":
			return "ドキュメントが空です"
		}
	default: // "en"
		switch code {
		case "parse_error":
			return "parse error"
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required field missing"
		case "unknown_key":
			return "unknown key"
		case "duplicate_key":
			return "duplicate key"
		case "overflow":
			return "value out of range"
		case "unknown_type":
			return "unknown type"
		case "arity":
			return "field count mismatch"
		case "named_list_item":
			return "list items cannot be named"
		case "unnamed_map_item":
			return "map items must be named"
		case "bad_declaration":
			return "malformed declaration"
		case "bad_argument":
			return "malformed argument"
		case "bad_expand":
			return "expand target is not expandable"
		case "unknown_import":
			return "unknown import"
		case "unknown_export":
			return "unknown export"
		case "depth_exceeded":
			return "expansion too deep"
		case "empty_document":
			return "document is empty"
		}
	}
	return code
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
