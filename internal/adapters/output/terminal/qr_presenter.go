package terminal

import (
	"io"
	"os"

	"whatsapp-checker/internal/ports/output"

	"github.com/mdp/qrterminal/v3"
)

var _ output.PairingPresenter = (*QRPresenter)(nil)

// QRPresenter struct - renders pairing challenges as a QR code on a terminal
type QRPresenter struct {
	writer io.Writer
}

// NewQRPresenter creates a presenter writing to w, stdout when nil
func NewQRPresenter(w io.Writer) *QRPresenter {
	if w == nil {
		w = os.Stdout
	}
	return &QRPresenter{writer: w}
}

// ShowQR renders the code with half blocks so it fits small terminals
func (p *QRPresenter) ShowQR(code string) {
	if code == "" {
		return
	}
	qrterminal.GenerateHalfBlock(code, qrterminal.L, p.writer)
}
