package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iho/cambiod/internal/domain"
)

// Receipt prefixes per operation kind.
const (
	receiptPrefixBuy  = "COMP"
	receiptPrefixSell = "VENT"
)

const receiptMaxAttempts = 5

// ReceiptGenerator produces comprobante strings of the form
// PREFIX-YYYYMMDD-HHMMSS-<8 hex chars>. Uniqueness is enforced by an
// exists-check against stored transactions; the 8 random hex chars make a
// collision within one second astronomically unlikely, so the check is a
// safety net rather than a race guard.
type ReceiptGenerator struct {
	txnRepo TransactionRepository
	now     func() time.Time
	entropy io.Reader
}

// NewReceiptGenerator creates a ReceiptGenerator.
func NewReceiptGenerator(txnRepo TransactionRepository) *ReceiptGenerator {
	return &ReceiptGenerator{
		txnRepo: txnRepo,
		now:     time.Now,
		entropy: rand.Reader,
	}
}

// Generate returns a receipt string unique among stored transactions.
func (g *ReceiptGenerator) Generate(ctx context.Context, kind domain.OperationKind) (string, error) {
	prefix := receiptPrefixBuy
	if kind == domain.OperationSell {
		prefix = receiptPrefixSell
	}

	for attempt := 0; attempt < receiptMaxAttempts; attempt++ {
		receipt, err := g.format(prefix)
		if err != nil {
			return "", err
		}

		exists, err := g.txnRepo.ExistsReceipt(ctx, receipt)
		if err != nil {
			return "", fmt.Errorf("checking receipt uniqueness: %w", err)
		}

		if !exists {
			return receipt, nil
		}
	}

	// Collision on every attempt: disambiguate with a nanosecond suffix.
	receipt, err := g.format(prefix)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%d", receipt, g.now().UnixNano()), nil
}

func (g *ReceiptGenerator) format(prefix string) (string, error) {
	now := g.now().UTC()

	buf := make([]byte, 4)
	if _, err := io.ReadFull(g.entropy, buf); err != nil {
		return "", fmt.Errorf("reading receipt entropy: %w", err)
	}

	return fmt.Sprintf("%s-%s-%s-%s",
		prefix,
		now.Format("20060102"),
		now.Format("150405"),
		strings.ToUpper(hex.EncodeToString(buf)),
	), nil
}
