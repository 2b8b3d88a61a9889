// Package payfast implements the PayFast wire protocol: the canonical
// parameter encoding, MD5 signature generation and verification, and the
// server-to-server validation call. Everything here must bit-exact match the
// gateway's own behaviour, so the encoding rules and endpoints are pinned as
// constants rather than derived from standard library encoders.
package payfast

const (
	// ProcessURLLive is the live payment page payers are redirected to.
	ProcessURLLive = "https://www.payfast.co.za/eng/process"
	// ProcessURLSandbox is the sandbox payment page.
	ProcessURLSandbox = "https://sandbox.payfast.co.za/eng/process"
	// ValidateURLLive is the live server-to-server IPN confirmation endpoint.
	ValidateURLLive = "https://www.payfast.co.za/eng/query/validate"
	// ValidateURLSandbox is the sandbox confirmation endpoint.
	ValidateURLSandbox = "https://sandbox.payfast.co.za/eng/query/validate"

	// SandboxTestMerchantID is PayFast's shared sandbox test account. It has
	// no passphrase configured, so signatures for it are computed without the
	// passphrase suffix regardless of local configuration.
	SandboxTestMerchantID = "10000100"

	// validResponseToken is the body the validate endpoint returns for a
	// genuine notification. The negative response is "INVALID", so matching
	// must not use a plain substring search.
	validResponseToken = "VALID"
)

// IPN field names as sent by the gateway.
const (
	FieldSignature     = "signature"
	FieldReference     = "m_payment_id"
	FieldPfPaymentID   = "pf_payment_id"
	FieldPaymentStatus = "payment_status"
	FieldAmountGross   = "amount_gross"
	FieldMerchantID    = "merchant_id"
	FieldEmailAddress  = "email_address"
	FieldNameFirst     = "name_first"
	FieldNameLast      = "name_last"
	FieldItemName      = "item_name"
)

// ProcessURL returns the payment page URL for the given mode.
func ProcessURL(live bool) string {
	if live {
		return ProcessURLLive
	}
	return ProcessURLSandbox
}

// ValidateURL returns the IPN confirmation URL for the given mode.
func ValidateURL(live bool) string {
	if live {
		return ValidateURLLive
	}
	return ValidateURLSandbox
}

// PassphraseFor returns the passphrase to use when signing for the given
// merchant identity. The sandbox test merchant never has one.
func PassphraseFor(merchantID, configured string) string {
	if merchantID == SandboxTestMerchantID {
		return ""
	}
	return configured
}
