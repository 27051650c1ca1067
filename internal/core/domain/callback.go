package domain

// STKCallback is the reconciliation input parsed out of the gateway's
// nested webhook body. Raw keeps the payload as received for audit.
type STKCallback struct {
	CheckoutRequestID string
	MerchantRequestID string
	ResultCode        int
	ResultDesc        string
	Items             []CallbackItem
	Raw               string
}

type CallbackItem struct {
	Name  string
	Value any
}

const receiptItemName = "MpesaReceiptNumber"

// ReceiptCode returns the value of the receipt metadata item, empty when
// the gateway sent none.
func (c *STKCallback) ReceiptCode() string {
	for _, item := range c.Items {
		if item.Name == receiptItemName {
			if s, ok := item.Value.(string); ok {
				return s
			}
		}
	}
	return ""
}
