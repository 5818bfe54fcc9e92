package ledger

import (
	"errors"
	"strings"

	"backoffice/internal/models"
)

type Mode string

const (
	ModeFiscal Mode = "fiscal"
	ModeReal   Mode = "real"
)

var (
	ErrRealViewForbidden = errors.New("real view requires the can_view_real capability")
	ErrUnknownView       = errors.New("view must be fiscal or real")
)

// View is the privacy view a request renders with. It travels explicitly with the request.
type View struct {
	Mode        Mode `json:"mode"`
	CanViewReal bool `json:"can_view_real"`
}

// ResolveView turns a requested mode into a View. An empty request picks real when the
// caller may see it and fiscal otherwise.
func ResolveView(requested string, canViewReal bool) (View, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(requested))) {
	case "":
		if canViewReal {
			return View{Mode: ModeReal, CanViewReal: true}, nil
		}
		return View{Mode: ModeFiscal}, nil
	case ModeFiscal:
		return View{Mode: ModeFiscal, CanViewReal: canViewReal}, nil
	case ModeReal:
		if !canViewReal {
			return View{}, ErrRealViewForbidden
		}
		return View{Mode: ModeReal, CanViewReal: true}, nil
	default:
		return View{}, ErrUnknownView
	}
}

// Includes reports whether tx is visible under the view.
func (v View) Includes(tx *models.Transaction) bool {
	return v.Mode == ModeReal || tx.IsFiscal
}

// Filter keeps the rows visible under the view.
func (v View) Filter(txs []*models.Transaction) []*models.Transaction {
	if v.Mode == ModeReal {
		return txs
	}
	out := make([]*models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if v.Includes(tx) {
			out = append(out, tx)
		}
	}
	return out
}
