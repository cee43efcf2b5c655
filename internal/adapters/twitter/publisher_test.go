package twitter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelgado/salebot/internal/adapters/twitter"
	"github.com/adelgado/salebot/internal/domain"
)

// tweetBody refleja el payload de POST /2/tweets para las aserciones.
type tweetBody struct {
	Text  string `json:"text"`
	Media *struct {
		MediaIDs []string `json:"media_ids"`
	} `json:"media"`
}

func testCreds() twitter.Credentials {
	return twitter.Credentials{
		APIKey:      "ck",
		APISecret:   "cs",
		Token:       "tok",
		TokenSecret: "ts",
	}
}

func textAnnouncement(text string) domain.Announcement {
	return domain.Announcement{
		ID:     uuid.NewString(),
		SaleID: "sale-1",
		Text:   text,
	}
}

func TestPublish_TextOnly(t *testing.T) {
	var gotBody tweetBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/tweets", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		auth := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(auth, "OAuth "), "header firmado OAuth 1.0a")
		assert.Contains(t, auth, `oauth_consumer_key="ck"`)
		assert.Contains(t, auth, `oauth_signature=`)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"id": "1234567890"}}`))
	}))
	defer srv.Close()

	pub := twitter.NewPublisher(testCreds(), srv.URL, srv.URL)
	receipt, err := pub.Publish(context.Background(), textAnnouncement("Primitive #7 bought for 1.5000 Ξ"))

	require.NoError(t, err)
	assert.Equal(t, "1234567890", receipt.PostID)
	assert.Equal(t, "Primitive #7 bought for 1.5000 Ξ", gotBody.Text)
	assert.Nil(t, gotBody.Media, "sin imagen no debe ir el bloque media")
}

func TestPublish_WithImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/1.1/media/upload.json":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			_, hdr, err := r.FormFile("media")
			require.NoError(t, err)
			assert.NotZero(t, hdr.Size)
			w.Write([]byte(`{"media_id_string": "media-99"}`))
		case "/2/tweets":
			var body tweetBody
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.NotNil(t, body.Media)
			assert.Equal(t, []string{"media-99"}, body.Media.MediaIDs)
			w.Write([]byte(`{"data": {"id": "42"}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	ann := textAnnouncement("with image")
	ann.Image = &domain.Image{Bytes: []byte("png-bytes"), ContentType: "image/png"}

	pub := twitter.NewPublisher(testCreds(), srv.URL, srv.URL)
	receipt, err := pub.Publish(context.Background(), ann)

	require.NoError(t, err)
	assert.Equal(t, "42", receipt.PostID)
}

func TestPublish_MediaFailureDegradesToText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/1.1/media/upload.json":
			http.Error(w, "media service down", http.StatusServiceUnavailable)
		case "/2/tweets":
			var body tweetBody
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Nil(t, body.Media, "tras fallo de media el tweet va solo-texto")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data": {"id": "77"}}`))
		}
	}))
	defer srv.Close()

	ann := textAnnouncement("degraded")
	ann.Image = &domain.Image{Bytes: []byte("x"), ContentType: "image/png"}

	pub := twitter.NewPublisher(testCreds(), srv.URL, srv.URL)
	receipt, err := pub.Publish(context.Background(), ann)

	require.NoError(t, err, "el fallo de media no debe tumbar el publish")
	assert.Equal(t, "77", receipt.PostID)
}

func TestPublish_RateLimitIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	pub := twitter.NewPublisher(testCreds(), srv.URL, srv.URL)
	_, err := pub.Publish(context.Background(), textAnnouncement("x"))

	require.Error(t, err)
	assert.True(t, domain.IsRetryablePublish(err))

	var perr *domain.PublishError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
}

func TestPublish_ForbiddenIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate content", http.StatusForbidden)
	}))
	defer srv.Close()

	pub := twitter.NewPublisher(testCreds(), srv.URL, srv.URL)
	_, err := pub.Publish(context.Background(), textAnnouncement("x"))

	require.Error(t, err)
	assert.False(t, domain.IsRetryablePublish(err))
}
