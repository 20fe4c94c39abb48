package models

// Module is the admin view of a discovered module.
type Module struct {
	Name        string
	DisplayName string
	Version     string
	Description string
	Category    string
	Core        bool
	Enabled     bool
	Loaded      bool
	LoadedAt    *string
	MenuItems   []*MenuItem
}

type MenuItem struct {
	Label  string
	Path   string
	Icon   string
	Order  int32
	Module string
	Core   bool
}

// Setting is one stored value rendered as text; json values are their encoded form.
type Setting struct {
	Category string
	Key      string
	Value    string
	Type     string
}

type Stats struct {
	Proposals int32
	Pages     int32
	Posts     int32
	Media     int32
}
