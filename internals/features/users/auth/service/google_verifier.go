package service

import (
	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/pkg/errors"
)

type GoogleIdentity struct {
	Sub   string
	Email string
	Name  string
}

type GoogleVerifier interface {
	Verify(idToken string, audience []string) (GoogleIdentity, error)
}

// FuturendaVerifier checks Google ID tokens against Google's published certs.
type FuturendaVerifier struct{}

func (FuturendaVerifier) Verify(idToken string, audience []string) (GoogleIdentity, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, audience); err != nil {
		return GoogleIdentity{}, errors.Wrap(err, "verify google id token")
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return GoogleIdentity{}, errors.Wrap(err, "decode google id token")
	}
	return GoogleIdentity{Sub: claimSet.Sub, Email: claimSet.Email, Name: claimSet.Name}, nil
}
