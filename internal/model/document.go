package model

// Principal identifies the authenticated caller.
type Principal struct {
	UserID string
	Role   string
}

func (p Principal) IsAdmin() bool    { return p.Role == "ADMIN" }
func (p Principal) IsManager() bool  { return p.Role == "MANAGER" }
func (p Principal) IsReadOnly() bool { return p.Role == "VIEWER" }

// ContractDocument is the consolidated snapshot handed to the document
// renderers. Formatting (currency symbols, locale) is the renderer's job.
type ContractDocument struct {
	Contract   Contract
	ClientName string
	Status     StatusProjection
	DaysTotal  int
	Extended   bool
	ExtraDays  int
}
