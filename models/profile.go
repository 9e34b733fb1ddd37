package models

// ViewerProfile is the scope an authority declared at login. Empty fields mean "no restriction".
type ViewerProfile struct {
	Gmail      string `json:"gmail,omitempty"`
	State      string `json:"state,omitempty"`
	Department string `json:"department,omitempty"`
}

// PrioritySummary holds per-status counts over a visibility-scoped list.
type PrioritySummary struct {
	Urgent    int `json:"urgent"`
	Underwork int `json:"underwork"`
	Solved    int `json:"solved"`
	Total     int `json:"total"`
}
