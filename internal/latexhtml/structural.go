package latexhtml

// Converter is the contract shared by the fragment converters so that
// callers can swap the structural and document pipelines.
type Converter interface {
	Convert(fragment string) string
}

// Compile-time interface implementation checks.
var (
	_ Converter = StructuralConverter{}
	_ Converter = (*DocumentConverter)(nil)
)

// structuralPasses runs in this order; each pass sees the HTML produced by
// the previous ones.
var structuralPasses = []func(string) string{
	ConvertEnumerate,
	ConvertItemize,
	ConvertTabular,
	ConvertCenter,
	ConvertDisplayMath,
}

// ConvertStructural converts lists, tables, centered blocks and display math
// in a problem fragment.
func ConvertStructural(s string) string {
	if s == "" {
		return ""
	}
	for _, pass := range structuralPasses {
		s = pass(s)
	}
	return s
}

// StructuralConverter adapts ConvertStructural to the Converter interface.
type StructuralConverter struct{}

// Convert implements Converter.
func (StructuralConverter) Convert(fragment string) string {
	return ConvertStructural(fragment)
}
