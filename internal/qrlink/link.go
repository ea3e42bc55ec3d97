package qrlink

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/iden3/go-iden3-core/v2/w3c"
)

const (
	requestURI           = "%s/v1/qr-store?id=%s"
	requestURIWithHolder = "%s/v1/qr-store?id=%s&holder=%s"
)

// NewDeepLink creates a deep link that opens the wallet app on the stored QR body.
// If holderDID is nil the holder parameter is omitted.
func NewDeepLink(hostURL string, id uuid.UUID, holderDID *w3c.DID) string {
	if holderDID != nil {
		return fmt.Sprintf("holdr://?request_uri=%s", url.QueryEscape(fmt.Sprintf(requestURIWithHolder, hostURL, id.String(), holderDID.String())))
	}
	return fmt.Sprintf("holdr://?request_uri=%s", url.QueryEscape(fmt.Sprintf(requestURI, hostURL, id.String())))
}

// NewUniversal creates a universal link for devices without the wallet app installed.
// If holderDID is nil the holder parameter is omitted.
func NewUniversal(uLinkBaseUrl string, hostURL string, id uuid.UUID, holderDID *w3c.DID) string {
	if holderDID != nil {
		requestUri := fmt.Sprintf(requestURIWithHolder, hostURL, id.String(), holderDID.String())
		return fmt.Sprintf("%s#request_uri=%s", uLinkBaseUrl, url.QueryEscape(requestUri))
	}
	return fmt.Sprintf("%s#request_uri=%s", uLinkBaseUrl, url.QueryEscape(fmt.Sprintf(requestURI, hostURL, id.String())))
}
