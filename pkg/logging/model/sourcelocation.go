package model

// SourceLocation is the code location that emitted the entry. Line is kept as
// the decimal string the API returns.
type SourceLocation struct {
	File     string `json:"file,omitempty"`
	Line     string `json:"line,omitempty"`
	Function string `json:"function,omitempty"`
}

func (s *SourceLocation) IsEmpty() bool {
	return s == nil || *s == SourceLocation{}
}
