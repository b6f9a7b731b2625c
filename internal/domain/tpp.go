package domain

// TppInfo identifies the third-party provider a payment was initiated by.
// It is attached at creation time and revalidated on every subsequent
// request against the payment.
type TppInfo struct {
	AuthorisationNumber string
	TppName             string
	AuthorityID         string
	AuthorityName       string
	Country             string
	RedirectURI         string
	NokRedirectURI      string
}

// Matches reports whether two TPP identities refer to the same registered
// provider. Redirect URIs vary per request and do not take part in the
// comparison.
func (t TppInfo) Matches(other TppInfo) bool {
	return t.AuthorisationNumber == other.AuthorisationNumber &&
		t.AuthorityID == other.AuthorityID
}

// PsuIdData identifies the payment service user on whose behalf the TPP
// acts. All fields are optional at the protocol level; an empty value
// means the PSU has not been identified yet.
type PsuIdData struct {
	PsuID              string
	PsuIDType          string
	PsuCorporateID     string
	PsuCorporateIDType string
}

func (p PsuIdData) IsEmpty() bool {
	return p.PsuID == "" && p.PsuCorporateID == ""
}
