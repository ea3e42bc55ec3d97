package domain

// ProofRequest is the canonical input for one proof generation. PublicInputs
// is what the verifier will see. PrivateInputsEncoded carries the undisclosed
// field data across the prover boundary and must never be logged, stored or
// put on the wire to anything but the prover.
type ProofRequest struct {
	CircuitID            string            `json:"circuit_id"`
	PublicInputs         []string          `json:"public_inputs"`
	PrivateInputsEncoded string            `json:"private_inputs_encoded"`
	Options              map[string]string `json:"options,omitempty"`
}

// Zero wipes the private input blob. The bridge calls it after every
// execution, whether it succeeded or not.
func (r *ProofRequest) Zero() {
	b := []byte(r.PrivateInputsEncoded)
	for i := range b {
		b[i] = 0
	}
	r.PrivateInputsEncoded = ""
}

// ProofErrorKind classifies a failed proof attempt
type ProofErrorKind string

// Proof error kinds
const (
	ProofErrorValidation ProofErrorKind = "validation"
	ProofErrorBridge     ProofErrorKind = "bridge"
	ProofErrorBusy       ProofErrorKind = "already_in_progress"
	ProofErrorCanceled   ProofErrorKind = "canceled"
)

// ProofError is the typed failure attached to an unsuccessful ProofResult
type ProofError struct {
	Kind    ProofErrorKind
	Message string
}

func (e *ProofError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// ProofResult is the immutable outcome of one proof generation. Proof is
// present iff Ok, Error iff not Ok.
type ProofResult struct {
	Ok    bool
	Proof []byte
	Error *ProofError
}

// NewProofError builds a failed result with the given kind and message
func NewProofError(kind ProofErrorKind, message string) *ProofResult {
	return &ProofResult{Ok: false, Error: &ProofError{Kind: kind, Message: message}}
}

// ProofShare is the payload packed into a proof envelope for transport. It
// carries only public material.
type ProofShare struct {
	CircuitID    string   `json:"circuit_id"`
	Proof        string   `json:"proof"`
	PublicInputs []string `json:"public_inputs"`
	Holder       string   `json:"holder,omitempty"`
}
