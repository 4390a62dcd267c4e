package pipeline

import (
	"strings"

	"github.com/dentalforms/formspec/internal/schema"
)

// Matcher walks document lines and produces raw fields. Matching strategies
// run in priority order per line: compound layouts, canonical questions,
// checkbox runs, blank fills, then colon labels. The first strategy that
// claims a line consumes it.
type Matcher struct {
	tracker    *SectionTracker
	classifier *Classifier
	tables     *Tables
	keys       *keyRegistry

	// titles records the section each emitted label first appeared in, so a
	// repeat of the same label is recognized as a duplicate detection
	titles map[string]string
	lines  []string
}

// NewMatcher creates a matcher over the given section tracker and rule tables
func NewMatcher(tracker *SectionTracker, classifier *Classifier, tables *Tables) *Matcher {
	return &Matcher{
		tracker:    tracker,
		classifier: classifier,
		tables:     tables,
		keys:       newKeyRegistry(),
		titles:     make(map[string]string),
	}
}

// Match extracts fields from the lines in document order
func (m *Matcher) Match(lines []string) []schema.Field {
	var fields []schema.Field
	m.lines = lines

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if _, isHeader := m.tracker.HeaderAt(i); isHeader {
			continue
		}
		if m.classifier.IsExcludedSignatory(line) {
			continue
		}

		// Structured matches trust the running header section; generic
		// labels get the context-sensitive resolution
		current := m.tracker.CurrentSection(i)

		if consumed := m.matchWorkAddress(lines, i, current, &fields); consumed > 0 {
			i += consumed - 1
			continue
		}
		if m.matchCompound(line, i, current, &fields) {
			continue
		}
		if m.matchCanonicalQuestion(line, i, current, &fields) {
			continue
		}
		if consumed := m.matchCheckboxRun(lines, i, current, &fields); consumed > 0 {
			i += consumed - 1
			continue
		}
		if m.matchStandalone(line, i, current, &fields) {
			continue
		}

		contextual := m.tracker.SectionFor(lines, i)
		if m.matchBlankFills(line, i, contextual, &fields) {
			continue
		}
		m.matchColonLabel(line, i, contextual, &fields)
	}

	return fields
}

// build turns a compound field template into a schema field
func (m *Matcher) build(cf compoundField, key, section string, line int) schema.Field {
	m.titles[strings.ToLower(cf.title)] = section
	field := schema.Field{
		Key:     key,
		Title:   cf.title,
		Type:    cf.fieldType,
		Section: section,
		Line:    line,
	}
	switch cf.fieldType {
	case schema.FieldTypeInput:
		field.Control = schema.InputControl{InputType: cf.inputType}
	case schema.FieldTypeDate:
		field.Control = schema.DateControl{InputType: cf.dateType}
	default:
		field.Control = schema.EmptyControl{}
	}
	return field
}

// matchWorkAddress handles the two-line Work Address block, the one place a
// duplicate Street/City/State/Zip group is legitimate
func (m *Matcher) matchWorkAddress(lines []string, i int, section string, fields *[]schema.Field) int {
	if !strings.Contains(strings.ToLower(lines[i]), "work address") {
		return 0
	}
	if i+1 >= len(lines) || !workAddressNext.MatchString(lines[i+1]) {
		return 0
	}

	mapping, ok := m.tables.WorkAddressKeys[section]
	hostSection := section
	if !ok {
		mapping = m.tables.WorkAddressKeys[SectionPatientInfo]
		hostSection = SectionPatientInfo
	}

	for _, cf := range mapping {
		if m.keys.Has(cf.key) {
			continue
		}
		*fields = append(*fields, m.build(cf, m.keys.Claim(cf.key), hostSection, i+1))
	}
	return 2
}

func (m *Matcher) matchCompound(line string, i int, section string, fields *[]schema.Field) bool {
	for _, rule := range m.tables.Compound {
		if !rule.pattern.MatchString(line) {
			continue
		}
		for _, cf := range rule.fields {
			*fields = append(*fields, m.build(cf, m.keys.Claim(cf.key), section, i))
		}
		return true
	}
	return false
}

func (m *Matcher) matchCanonicalQuestion(line string, i int, section string, fields *[]schema.Field) bool {
	for _, q := range m.tables.CanonicalQuestions {
		if !q.pattern.MatchString(line) {
			continue
		}

		key := schema.SlugifyKey(q.title)
		if q.keyFor != nil {
			key = q.keyFor(section)
		} else if canonical, ok := m.tables.CanonicalKeys[strings.ToLower(q.title)]; ok {
			key = canonical
		}
		if m.keys.Has(key) {
			return true
		}

		opts := make([]schema.Option, len(q.options))
		copy(opts, q.options)
		m.titles[strings.ToLower(q.title)] = section
		*fields = append(*fields, schema.Field{
			Key:     m.keys.Claim(key),
			Title:   q.title,
			Type:    schema.FieldTypeRadio,
			Section: section,
			Control: schema.OptionsControl{Options: opts},
			Line:    i,
		})
		return true
	}
	return false
}

// matchCheckboxRun handles a question with inline checkbox options and runs
// of option-only lines (medical history lists)
func (m *Matcher) matchCheckboxRun(lines []string, i int, section string, fields *[]schema.Field) int {
	line := lines[i]
	if !checkboxSymbol.MatchString(line) {
		return 0
	}

	// Question and options on one line
	if idx := checkboxSymbol.FindStringIndex(line); idx != nil && idx[0] > 0 {
		question := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line[:idx[0]]), ":"))
		options := extractOptions(line)
		if len(question) >= 5 && len(options) >= 2 {
			title := schema.CleanText(question)
			fieldType := schema.FieldTypeRadio
			if containsAny(strings.ToLower(question), "check all", "select all") {
				fieldType = schema.FieldTypeCheckbox
			}
			m.titles[strings.ToLower(title)] = section
			*fields = append(*fields, schema.Field{
				Key:     m.keys.Claim(m.tables.KeyFor(title, section)),
				Title:   title,
				Type:    fieldType,
				Section: section,
				Control: schema.OptionsControl{Options: options},
				Line:    i,
			})
			return 1
		}
	}

	// Run of option-only lines; the preceding field or line supplies context
	var options []schema.Option
	consumed := 0
	for j := i; j < len(lines); j++ {
		if !checkboxSymbol.MatchString(lines[j]) {
			break
		}
		options = append(options, extractOptions(lines[j])...)
		consumed++
	}
	if len(options) < 2 {
		return 0
	}

	title := "Please Check All That Apply"
	fromPrevLine := false
	if i > 0 {
		if prev := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(lines[i-1]), ":")); prev != "" &&
			len(prev) < 80 && !checkboxSymbol.MatchString(prev) {
			title = schema.CleanText(prev)
			fromPrevLine = true
		}
	}
	// When the preceding line already produced this question, these glyphs
	// are its options restated, not a second field
	if fromPrevLine && m.keys.Has(m.tables.KeyFor(title, section)) {
		return consumed
	}
	m.titles[strings.ToLower(title)] = section
	*fields = append(*fields, schema.Field{
		Key:     m.keys.Claim(m.tables.KeyFor(title, section)),
		Title:   title,
		Type:    schema.FieldTypeCheckbox,
		Section: section,
		Control: schema.OptionsControl{Options: options},
		Line:    i,
	})
	return consumed
}

func (m *Matcher) matchStandalone(line string, i int, section string, fields *[]schema.Field) bool {
	normalized := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(line), ":"))
	normalized = strings.NewReplacer("’", "'", " '", "'").Replace(normalized)

	sf, ok := m.tables.Standalone[normalized]
	if !ok {
		return false
	}

	key, ok := sf.keyBySection[section]
	if !ok {
		key = sf.keyBySection[""]
	}
	if m.keys.Has(key) {
		// The reference key is taken: this is a repeat appearance of the
		// label, let uniqueness numbering handle it
		key = m.tables.KeyFor(sf.title, section)
	}

	m.titles[strings.ToLower(sf.title)] = section
	field := schema.Field{
		Key:     m.keys.Claim(key),
		Title:   sf.title,
		Type:    sf.fieldType,
		Section: section,
		Line:    i,
	}
	switch {
	case sf.fieldType == schema.FieldTypeInput:
		field.Control = schema.InputControl{InputType: sf.inputType}
	case sf.fieldType == schema.FieldTypeDate:
		field.Control = schema.DateControl{InputType: sf.dateType}
	case len(sf.options) > 0:
		opts := make([]schema.Option, len(sf.options))
		copy(opts, sf.options)
		field.Control = schema.OptionsControl{Options: opts}
	}
	*fields = append(*fields, field)
	return true
}

// matchBlankFills extracts every "Label ____" group on a line
func (m *Matcher) matchBlankFills(line string, i int, section string, fields *[]schema.Field) bool {
	if !underscoreRun.MatchString(line) {
		return false
	}

	matched := false
	for _, sub := range blankFill.FindAllStringSubmatch(line, -1) {
		label := strings.TrimSpace(sub[1])
		if !m.labelOK(label) {
			continue
		}
		m.emitLabeled(label, line, i, section, fields)
		matched = true
	}
	return matched
}

// matchColonLabel extracts a single "Label:" field from a line
func (m *Matcher) matchColonLabel(line string, i int, section string, fields *[]schema.Field) {
	sub := colonLabel.FindStringSubmatch(line)
	if sub == nil {
		return
	}
	label := strings.TrimSpace(sub[1])
	if !m.labelOK(label) {
		return
	}
	m.emitLabeled(label, line, i, section, fields)
}

func (m *Matcher) emitLabeled(label, line string, i int, section string, fields *[]schema.Field) {
	title := m.tables.NormalizeTitle(label)
	fieldType := m.classifier.ClassifyType(label)
	if fieldType == schema.FieldTypeText || fieldType == schema.FieldTypeHeader {
		// Labeled blanks are always fillable
		fieldType = schema.FieldTypeInput
	}

	// A label already emitted in this section is a duplicate detection and
	// is dropped, unless the context names a block that legitimately
	// repeats labels (work address, secondary plan)
	titleKey := strings.ToLower(title)
	if prev, seen := m.titles[titleKey]; seen && prev == section && !m.repeatAllowed(i) {
		return
	}
	m.titles[titleKey] = section

	field := schema.Field{
		Key:     m.keys.Claim(m.tables.KeyFor(title, section)),
		Title:   title,
		Type:    fieldType,
		Section: section,
		Line:    i,
	}
	switch fieldType {
	case schema.FieldTypeInput:
		field.Control = schema.InputControl{InputType: m.classifier.ClassifyInputType(label)}
	case schema.FieldTypeDate:
		dt := schema.DateTypeAny
		if containsAny(strings.ToLower(label), "birth", "dob") {
			dt = schema.DateTypePast
		}
		field.Control = schema.DateControl{InputType: dt}
	case schema.FieldTypeSignature:
		if m.classifier.IsExcludedSignatory(line) {
			return
		}
		field.Control = schema.EmptyControl{}
	default:
		field.Control = schema.EmptyControl{}
	}
	*fields = append(*fields, field)
}

// repeatAllowed reports whether the context window before line i names a
// block that repeats earlier labels by design
func (m *Matcher) repeatAllowed(i int) bool {
	lo := i - m.tracker.ContextWindow
	if lo < 0 {
		lo = 0
	}
	hi := i + 1
	if hi > len(m.lines) {
		hi = len(m.lines)
	}
	window := strings.ToLower(strings.Join(m.lines[lo:hi], " "))
	return containsAny(window, "work address", "secondary")
}

// labelOK filters out instruction text and degenerate labels
func (m *Matcher) labelOK(label string) bool {
	if len(label) < 3 || len(label) >= 50 {
		return false
	}
	lower := strings.ToLower(label)
	for _, stop := range m.tables.StopWords {
		if strings.Contains(lower, stop) {
			return false
		}
	}
	// A label must contain some letters, and not be one character repeated
	letters := nonAlpha.ReplaceAllString(label, "")
	if len(letters) < 2 {
		return false
	}
	first := letters[0]
	uniform := true
	for k := 1; k < len(letters); k++ {
		if letters[k] != first {
			uniform = false
			break
		}
	}
	return !uniform
}

// extractOptions pulls checkbox option labels from a line
func extractOptions(line string) []schema.Option {
	var options []schema.Option
	for _, sub := range checkboxOption.FindAllStringSubmatch(line, -1) {
		name := strings.TrimSpace(strings.Trim(sub[1], "(),. "))
		if name == "" || len(name) > 80 {
			continue
		}
		var value any
		switch strings.ToLower(name) {
		case "yes", "true":
			value = true
		case "no", "false":
			value = false
		default:
			value = name
		}
		options = append(options, schema.Option{Name: schema.CleanText(name), Value: value})
	}
	return options
}
