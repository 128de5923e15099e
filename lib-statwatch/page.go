package statwatch

// PageFormat is the format of the fetched page.
type PageFormat int8

const (
	FormatHTML PageFormat = iota
	FormatText
)

func (f PageFormat) String() string {
	if f == FormatText {
		return "text"
	}
	return "html"
}

// Page is the raw content of the status page.
type Page struct {
	Content string
	Format  PageFormat
}
