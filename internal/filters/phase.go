package filters

// Phase groups filters into the coarse processor stages. A pass can be
// restarted from any phase using the snapshot taken when the previous pass
// entered it.
type Phase int

const (
	PhaseRGB Phase = iota + 1
	PhaseLocalEdit
	PhaseLab
	PhaseOutput
)

// Phases lists every phase in pipeline order.
var Phases = []Phase{PhaseRGB, PhaseLocalEdit, PhaseLab, PhaseOutput}

func (p Phase) String() string {
	switch p {
	case PhaseRGB:
		return "rgb"
	case PhaseLocalEdit:
		return "local_edit"
	case PhaseLab:
		return "lab"
	case PhaseOutput:
		return "output"
	default:
		return "unknown"
	}
}
