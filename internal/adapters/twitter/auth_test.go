package twitter

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSigner devuelve un signer con nonce y timestamp deterministas.
func fixedSigner(ck, cs, tok, ts, nonce string, unix int64) *oauthSigner {
	s := newOAuthSigner(ck, cs, tok, ts)
	s.nonce = func() string { return nonce }
	s.now = func() time.Time { return time.Unix(unix, 0) }
	return s
}

func TestSign_OAuthCoreReferenceVector(t *testing.T) {
	// Vector de referencia de OAuth Core 1.0 (Appendix A.5):
	// GET http://photos.example.net/photos?file=vacation.jpg&size=original
	s := fixedSigner(
		"dpf43f3p2l4k3l03", "kd94hf93k423kf44",
		"nnch734d00sl2jdk", "pfkkdhi9sl3r4s00",
		"kllo9940pd9333jh", 1191242096,
	)

	req, err := http.NewRequest(http.MethodGet,
		"http://photos.example.net/photos?file=vacation.jpg&size=original", nil)
	require.NoError(t, err)

	s.sign(req)

	auth := req.Header.Get("Authorization")
	assert.Contains(t, auth, `oauth_consumer_key="dpf43f3p2l4k3l03"`)
	assert.Contains(t, auth, `oauth_signature_method="HMAC-SHA1"`)
	assert.Contains(t, auth, `oauth_timestamp="1191242096"`)
	assert.Contains(t, auth, `oauth_token="nnch734d00sl2jdk"`)
	assert.Contains(t, auth, `oauth_version="1.0"`)
	assert.Contains(t, auth, `oauth_signature="tR3%2BTy81lMeYAr%2FFid0kMTYa%2FWM%3D"`)
}

func TestSign_Deterministic(t *testing.T) {
	s := fixedSigner("ck", "cs", "tok", "ts", "nonce123", 1700000000)

	req1, _ := http.NewRequest(http.MethodPost, "https://api.twitter.com/2/tweets", nil)
	req2, _ := http.NewRequest(http.MethodPost, "https://api.twitter.com/2/tweets", nil)
	s.sign(req1)
	s.sign(req2)

	assert.Equal(t, req1.Header.Get("Authorization"), req2.Header.Get("Authorization"))
}

func TestPercentEncode(t *testing.T) {
	cases := map[string]string{
		"Ladies + Gentlemen": "Ladies%20%2B%20Gentlemen",
		"An encoded string!": "An%20encoded%20string%21",
		"Dogs, Cats & Mice":  "Dogs%2C%20Cats%20%26%20Mice",
		"☃":                  "%E2%98%83",
		"abc-._~XYZ019":      "abc-._~XYZ019", // unreserved pasa intacto
	}
	for in, want := range cases {
		assert.Equal(t, want, percentEncode(in), "input %q", in)
	}
}
