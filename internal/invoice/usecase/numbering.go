package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"
)

const seedInvoiceNumber = "INV-1001"

var (
	invoiceNumberPattern = regexp.MustCompile(`INV-(\d+)`)
	wireNumberPattern    = regexp.MustCompile(`^INV-[1-9]\d*$`)
)

// NextInvoiceNumber proposes the number for a new invoice from the latest
// stored one. It never fails: an unreachable store or an unparseable number
// falls back to the seed. Two sessions can be handed the same proposal; the
// unique index on invoice_number catches that at save time.
func (uc *invoiceUseCase) NextInvoiceNumber(ctx context.Context) string {
	latest, err := uc.repo.FindLatest(ctx)
	if err != nil {
		uc.logger.Warn("invoice numbering fell back to seed", zap.Error(err))
		return seedInvoiceNumber
	}
	if latest == nil {
		return seedInvoiceNumber
	}
	return nextInvoiceNumber(latest.InvoiceNumber)
}

func nextInvoiceNumber(latest string) string {
	m := invoiceNumberPattern.FindStringSubmatch(latest)
	if m == nil {
		return seedInvoiceNumber
	}
	n, err := strconv.ParseUint(m[1], 10, 63)
	if err != nil {
		return seedInvoiceNumber
	}
	return fmt.Sprintf("INV-%d", n+1)
}
