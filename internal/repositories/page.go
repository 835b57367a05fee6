package repositories

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page describes a 1-indexed pagination window.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps the provided page/limit query values into a valid window.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset returns the number of rows to skip for this window.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Limit returns the number of rows in this window.
func (p Page) Limit() int {
	return p.Size
}
