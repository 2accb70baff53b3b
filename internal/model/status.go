package model

// ContractState is the human-facing lifecycle state of a contract.
type ContractState string

const (
	StateActive              ContractState = "ACTIVE"
	StateAboutToConclude     ContractState = "ABOUT_TO_CONCLUDE"
	StateImminentConclusion  ContractState = "IMMINENT_CONCLUSION"
	StateConcluded           ContractState = "CONCLUDED"
	StateActiveWithExtension ContractState = "ACTIVE_WITH_EXTENSION"
)

// Label returns the stored Spanish display label for a state.
func (s ContractState) Label() string {
	switch s {
	case StateActive:
		return "Activo"
	case StateAboutToConclude:
		return "Por concluir"
	case StateImminentConclusion:
		return "Conclusión inminente"
	case StateConcluded:
		return "Concluido"
	case StateActiveWithExtension:
		return "Prórroga"
	default:
		return string(s)
	}
}

// StatusProjection is the display tuple handed to the rendering collaborator.
type StatusProjection struct {
	State         ContractState
	ColorToken    string
	IconToken     string
	DaysRemaining int
}
