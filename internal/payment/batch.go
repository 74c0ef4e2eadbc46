package payment

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Batch references look like BULK-<unix millis>-<order count>. The suffix
// exists for traceability, not uniqueness.
var batchRefRe = regexp.MustCompile(`^BULK-\d+-\d+$`)

// NewBatchRef synthesizes the transaction reference stamped on every order
// of a multi-order payment.
func NewBatchRef(orderCount int) string {
	return fmt.Sprintf("BULK-%d-%d", time.Now().UnixMilli(), orderCount)
}

func IsBatchRef(ref string) bool {
	return batchRefRe.MatchString(ref)
}

// IsOrderRef reports whether ref is shaped like an order identifier.
// Midtrans' endpoint test sends made-up ids and expects a 200; anything
// that is neither a UUID nor a batch ref is treated as such a probe.
func IsOrderRef(ref string) bool {
	return uuid.Validate(ref) == nil
}
