package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNumberFormats(t *testing.T) {
	require.Equal(t, "PO-2026-0007", FormatPurchaseOrderNumber(2026, 7))
	require.Equal(t, "PO-2026-1234", FormatPurchaseOrderNumber(2026, 1234))
	require.Equal(t, "PV-2026-00042", FormatVoucherNumber(2026, 42))
	require.Equal(t, "PR-2026-00001", FormatReceiptNumber(2026, 1))
}

func TestQuotationNumberUsesUnixMillis(t *testing.T) {
	g := NewGenerator()
	at := time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	g.WithNow(func() time.Time { return at })
	require.Equal(t, "QT-1773480413589", g.QuotationNumber())
}
