package persona

import "strings"

// Instruction: результат сборки: системный текст и few-shot примеры.
type Instruction struct {
	Label    string
	Kind     Kind
	System   string
	Examples []Exchange
}

// Build собирает инструкцию для модели по профилю наставника.
// Одинаковый профиль (с точностью до регистра и пробелов) даёт одинаковый результат.
func Build(label string) Instruction {
	label = Normalize(label)
	kind := Classify(label)

	pack, ok := packs[kind]
	if !ok {
		pack = genericPack(label)
	}

	var exs []Exchange
	if src := examples[kind]; len(src) > 0 {
		exs = make([]Exchange, len(src))
		copy(exs, src)
	}

	return Instruction{
		Label:    label,
		Kind:     kind,
		System:   render(pack),
		Examples: exs,
	}
}

func render(p stylePack) string {
	var b strings.Builder
	b.WriteString(contract)
	b.WriteString("\n\nMentor persona: you are ")
	b.WriteString(p.Role)
	b.WriteString(".\nVoice: ")
	b.WriteString(p.Voice)
	b.WriteString(".\nPriorities:\n")
	for _, pr := range p.Priorities {
		b.WriteString("- ")
		b.WriteString(pr)
		b.WriteString("\n")
	}
	if len(p.Phrasing) > 0 {
		b.WriteString("Typical phrasing:\n")
		for _, ph := range p.Phrasing {
			b.WriteString("- ")
			b.WriteString(ph)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
