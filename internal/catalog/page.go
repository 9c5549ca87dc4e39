package catalog

// Page is a 1-based page number
type Page struct {
	Number int `json:"page"`
}

// NewPage clamps n to at least 1
func NewPage(n int) Page {
	if n < 1 {
		n = 1
	}
	return Page{Number: n}
}

// Next returns the following page
func (p Page) Next() Page {
	return NewPage(p.Number + 1)
}

// Previous returns the preceding page, staying on page 1
func (p Page) Previous() Page {
	return NewPage(p.Number - 1)
}
