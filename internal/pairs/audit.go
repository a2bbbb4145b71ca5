package pairs

import (
	"path"
	"strings"
	"unicode"

	"github.com/faceverify/faceverify/internal/domain"
)

const maxAuditExamples = 5

// SuspectPair is a pair whose label disagrees with the identities in its file names
type SuspectPair struct {
	Pair      domain.Pair `json:"pair"`
	Identity1 string      `json:"identity1"`
	Identity2 string      `json:"identity2"`
}

// AuditReport summarises label/identity disagreements
type AuditReport struct {
	Checked  int           `json:"checked"`
	Suspect  int           `json:"suspect"`
	Examples []SuspectPair `json:"examples,omitempty"`
}

// Clean reports whether no suspect pairs were found
func (r AuditReport) Clean() bool {
	return r.Suspect == 0
}

// Identity derives a person identifier from an image file name:
// "Name_Surname_0001.jpg" becomes "Name_Surname".
func Identity(imagePath string) string {
	base := path.Base(strings.ReplaceAll(imagePath, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))

	i := strings.LastIndexByte(base, '_')
	if i <= 0 {
		return base
	}
	suffix := base[i+1:]
	if suffix == "" || strings.IndexFunc(suffix, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		return base
	}
	return base[:i]
}

// Audit compares each pair's label with the identities in its file names.
// Same-person pairs with differing identities and different-person pairs with
// matching identities are counted as suspect.
func Audit(pairs []domain.Pair) AuditReport {
	report := AuditReport{Checked: len(pairs)}

	for _, p := range pairs {
		id1, id2 := Identity(p.Image1), Identity(p.Image2)
		match := id1 == id2

		if (p.Label == domain.LabelSame) == match {
			continue
		}

		report.Suspect++
		if len(report.Examples) < maxAuditExamples {
			report.Examples = append(report.Examples, SuspectPair{Pair: p, Identity1: id1, Identity2: id2})
		}
	}

	return report
}
