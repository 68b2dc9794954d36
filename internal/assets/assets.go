package assets

// Built-in asset names.
const (
	DefaultStyleName    = "sheet"
	DefaultTemplateName = "sheet"
)
