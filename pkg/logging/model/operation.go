package model

// Operation ties a log entry to a long-running operation. Entries sharing Id and
// Producer belong to the same operation; First and Last mark its boundaries.
type Operation struct {
	Id       string `json:"id,omitempty"`
	Producer string `json:"producer,omitempty"`
	First    bool   `json:"first,omitempty"`
	Last     bool   `json:"last,omitempty"`
}

func (o *Operation) IsEmpty() bool {
	return o == nil || *o == Operation{}
}
