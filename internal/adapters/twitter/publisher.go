package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/adelgado/salebot/internal/domain"
)

const (
	defaultAPIBase    = "https://api.twitter.com"
	defaultUploadBase = "https://upload.twitter.com"
)

// Publisher publica announcements en Twitter/X. Usa el endpoint v2 para
// crear el tweet y el endpoint v1.1 para subir la imagen (el v2 no acepta
// media binario directo). Implementa ports.Publisher.
type Publisher struct {
	http       *http.Client
	signer     *oauthSigner
	apiBase    string
	uploadBase string
}

// Credentials son las cuatro claves OAuth 1.0a de la cuenta.
type Credentials struct {
	APIKey      string
	APISecret   string
	Token       string
	TokenSecret string
}

// NewPublisher crea el publisher. apiBase/uploadBase vacíos usan producción.
func NewPublisher(creds Credentials, apiBase, uploadBase string) *Publisher {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	if uploadBase == "" {
		uploadBase = defaultUploadBase
	}
	return &Publisher{
		http:       &http.Client{Timeout: 30 * time.Second},
		signer:     newOAuthSigner(creds.APIKey, creds.APISecret, creds.Token, creds.TokenSecret),
		apiBase:    apiBase,
		uploadBase: uploadBase,
	}
}

// Publish sube la imagen si la hay y crea el tweet. Un fallo en la subida
// de media degrada a tweet solo-texto — nunca descarta el announcement por
// la imagen. Nunca reintenta por su cuenta.
func (p *Publisher) Publish(ctx context.Context, ann domain.Announcement) (domain.PublishReceipt, error) {
	var mediaID string
	if ann.HasImage() {
		id, err := p.uploadMedia(ctx, ann.Image.Bytes)
		if err != nil {
			slog.Warn("media upload failed, posting text-only",
				"announcement_id", ann.ID, "sale_id", ann.SaleID, "err", err)
		} else {
			mediaID = id
		}
	}

	return p.createTweet(ctx, ann, mediaID)
}

// tweetRequest es el body de POST /2/tweets.
type tweetRequest struct {
	Text  string      `json:"text"`
	Media *tweetMedia `json:"media,omitempty"`
}

type tweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

// tweetResponse es la respuesta de POST /2/tweets.
type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// createTweet hace el POST autenticado a /2/tweets.
func (p *Publisher) createTweet(ctx context.Context, ann domain.Announcement, mediaID string) (domain.PublishReceipt, error) {
	payload := tweetRequest{Text: ann.Text}
	if mediaID != "" {
		payload.Media = &tweetMedia{MediaIDs: []string{mediaID}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.PublishReceipt{}, &domain.PublishError{
			Op: "twitter.createTweet", Err: err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.apiBase+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return domain.PublishReceipt{}, &domain.PublishError{
			Op: "twitter.createTweet", Err: err,
		}
	}
	req.Header.Set("Content-Type", "application/json")
	p.signer.sign(req)

	resp, err := p.http.Do(req)
	if err != nil {
		// Error de red: no sabemos si el tweet se creó. Retryable — riesgo
		// documentado de duplicado si el server sí lo publicó.
		return domain.PublishReceipt{}, &domain.PublishError{
			Op: "twitter.createTweet", Retryable: true, Err: err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.PublishReceipt{}, p.classifyHTTP("twitter.createTweet", resp)
	}

	var tr tweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return domain.PublishReceipt{}, &domain.PublishError{
			Op: "twitter.createTweet", Err: fmt.Errorf("decode response: %w", err),
		}
	}

	return domain.PublishReceipt{PostID: tr.Data.ID, PostedAt: time.Now().UTC()}, nil
}

// uploadMedia sube la imagen por el endpoint v1.1 y devuelve el media_id.
func (p *Publisher) uploadMedia(ctx context.Context, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("media", "media")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.uploadBase+"/1.1/media/upload.json", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	p.signer.sign(req)

	resp, err := p.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("media upload status %d: %s", resp.StatusCode, string(body))
	}

	var mr struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", fmt.Errorf("decode media response: %w", err)
	}
	if mr.MediaIDString == "" {
		return "", fmt.Errorf("media upload returned no media_id")
	}
	return mr.MediaIDString, nil
}

// classifyHTTP convierte un status HTTP en PublishError. Rate limit y 5xx
// son retryables; auth y validación no — reintentarlos sería un loop infinito.
func (p *Publisher) classifyHTTP(op string, resp *http.Response) *domain.PublishError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
	return &domain.PublishError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Retryable:  retryable,
		Err:        fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
	}
}
