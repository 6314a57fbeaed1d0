package service

// QRCodeService defines the interface for QR code generation.
type QRCodeService interface {
	// GenerateOfferQR renders a PNG QR code pointing at the public page of an offer.
	GenerateOfferQR(offerID int64) ([]byte, error)

	// OfferURL returns the public URL encoded in an offer's QR code.
	OfferURL(offerID int64) string
}
