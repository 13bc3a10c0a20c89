package output

// PairingPresenter interface - Output port
// Surfaces a pairing challenge to the operator.
type PairingPresenter interface {
	ShowQR(code string)
}
