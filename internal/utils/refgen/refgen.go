// Package refgen generates human-readable transaction references of the
// form PREFIX-YYMMDD-XXXX. The random suffix draws from an alphabet with
// the ambiguous characters (0, O, 1, I) removed so references survive
// being read out loud or copied from paper records.
package refgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const suffixAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const suffixLength = 4

// Prefixes for each transaction kind.
const (
	PrefixDeposit    = "DEP"
	PrefixWithdrawal = "WDR"
	PrefixRepayment  = "RPY"
	PrefixFine       = "FIN"
	PrefixLoan       = "LON"
)

// New builds a reference like DEP-240310-K7QX for the given prefix and date.
func New(prefix string, date time.Time) (string, error) {
	suffix := make([]byte, suffixLength)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate reference suffix: %w", err)
		}
		suffix[i] = suffixAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, date.Format("060102"), string(suffix)), nil
}
