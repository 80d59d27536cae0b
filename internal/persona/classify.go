// Package persona строит системную инструкцию для модели по профилю наставника.
//
// Профиль: короткая строка (пресет или свободный текст). Classify сводит её
// к перечислимому виду Kind, Build собирает итоговую инструкцию из общего
// поведенческого контракта и стилевого пакета. Пакет не выполняет ввода-вывода
// и детерминирован.
package persona

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLabelLength ограничивает длину профиля в рунах.
const MaxLabelLength = 80

// DefaultLabel используется, когда профиль не задан.
const DefaultLabel = "Seasoned finance executive (CFO)"

// Kind: вид стилевого пакета.
type Kind int

const (
	KindOther Kind = iota
	KindCFO
	KindFinanceDirector
	KindController
	KindLineManager
	KindBankMD
	KindGlobalRM
)

func (k Kind) String() string {
	switch k {
	case KindCFO:
		return "cfo"
	case KindFinanceDirector:
		return "finance_director"
	case KindController:
		return "controller"
	case KindLineManager:
		return "line_manager"
	case KindBankMD:
		return "bank_md"
	case KindGlobalRM:
		return "global_rm"
	default:
		return "other"
	}
}

// rule сопоставляет вид пакета с ключевыми фразами и словами.
// phrases ищутся подстрокой, tokens только целым словом.
type rule struct {
	kind    Kind
	phrases []string
	tokens  []string
}

// Порядок важен: более специфичные фразы проверяются раньше общих.
var rules = []rule{
	{kind: KindGlobalRM, phrases: []string{"relationship manager", "relationship management", "coverage banker"}, tokens: []string{"rm", "grm"}},
	{kind: KindBankMD, phrases: []string{"managing director", "investment bank", "bank md"}, tokens: []string{"md"}},
	{kind: KindCFO, phrases: []string{"chief financial officer", "head of finance"}, tokens: []string{"cfo"}},
	{kind: KindFinanceDirector, phrases: []string{"finance director", "director of finance", "financial director"}, tokens: []string{"fd"}},
	{kind: KindController, phrases: []string{"controller", "comptroller"}},
	{kind: KindLineManager, phrases: []string{"line manager", "hiring manager", "manager", "my boss"}},
}

// Normalize обрезает пробелы, схлопывает повторяющиеся пробелы и ограничивает
// длину профиля. Пустой профиль заменяется на DefaultLabel.
func Normalize(label string) string {
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return DefaultLabel
	}
	if utf8.RuneCountInString(label) > MaxLabelLength {
		label = strings.TrimSpace(string([]rune(label)[:MaxLabelLength]))
	}
	return label
}

// Classify определяет вид пакета по профилю без учёта регистра.
func Classify(label string) Kind {
	normalized := strings.ToLower(Normalize(label))
	tokens := tokenize(normalized)
	for _, r := range rules {
		for _, p := range r.phrases {
			if strings.Contains(normalized, p) {
				return r.kind
			}
		}
		for _, t := range r.tokens {
			if _, ok := tokens[t]; ok {
				return r.kind
			}
		}
	}
	return KindOther
}

func tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		out[f] = struct{}{}
	}
	return out
}
