package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/wflores9/StudioBot.ai/internal/types"
)

const (
	requestTimeout      = 90 * time.Second
	uploadTimeout       = 10 * time.Minute
	defaultPollInterval = 3 * time.Second
	maxKeyPhrases       = 10
)

type Adapter struct {
	key          string
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
}

type Option func(*Adapter)

func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.client = c }
}

func WithPollInterval(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.pollInterval = d
		}
	}
}

// New talks to ep, which callers obtain from ResolveEndpoint.
func New(apiKey string, ep Endpoint, opts ...Option) *Adapter {
	a := &Adapter{
		key:          apiKey,
		baseURL:      strings.TrimRight(ep.URL, "/"),
		client:       &http.Client{},
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Transcribe uploads the audio file, requests sentiment analysis and
// highlights, and blocks until the transcript completes or ctx ends.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (types.Transcript, error) {
	if a.key == "" {
		return types.Transcript{}, errors.New("assemblyai: api key is empty")
	}
	uploadURL, err := a.upload(ctx, audioPath)
	if err != nil {
		return types.Transcript{}, err
	}
	id, err := a.submit(ctx, uploadURL)
	if err != nil {
		return types.Transcript{}, err
	}
	res, err := a.wait(ctx, id)
	if err != nil {
		return types.Transcript{}, err
	}
	return toTranscript(res)
}

func (a *Adapter) upload(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	reqCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.baseURL+"/v2/upload", f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := a.do(req, uploadTimeout, &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", errors.New("assemblyai: upload returned no url")
	}
	return out.UploadURL, nil
}

type transcriptRequest struct {
	AudioURL          string `json:"audio_url"`
	SpeakerLabels     bool   `json:"speaker_labels"`
	SentimentAnalysis bool   `json:"sentiment_analysis"`
	AutoHighlights    bool   `json:"auto_highlights"`
	EntityDetection   bool   `json:"entity_detection"`
}

func (a *Adapter) submit(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(transcriptRequest{
		AudioURL:          audioURL,
		SpeakerLabels:     true,
		SentimentAnalysis: true,
		AutoHighlights:    true,
		EntityDetection:   true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.baseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out transcriptResponse
	if err := a.do(req, requestTimeout, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("assemblyai: transcript request returned no id")
	}
	return out.ID, nil
}

func (a *Adapter) wait(ctx context.Context, id string) (transcriptResponse, error) {
	t := time.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return transcriptResponse{}, ctx.Err()
		case <-t.C:
		}

		res, err := a.poll(ctx, id)
		if err != nil {
			return transcriptResponse{}, err
		}
		switch res.Status {
		case "completed":
			return res, nil
		case "error":
			return transcriptResponse{}, fmt.Errorf("assemblyai transcription failed: %s", redactSecrets(res.Error, a.key))
		}
		t.Reset(a.pollInterval)
	}
}

func (a *Adapter) poll(ctx context.Context, id string) (transcriptResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, a.baseURL+"/v2/transcript/"+id, nil)
	if err != nil {
		return transcriptResponse{}, err
	}
	var out transcriptResponse
	if err := a.do(req, requestTimeout, &out); err != nil {
		return transcriptResponse{}, err
	}
	return out, nil
}

// do sends req with the api key and decodes a 2xx JSON body into out.
func (a *Adapter) do(req *http.Request, timeout time.Duration, out any) error {
	req.Header.Set("Authorization", a.key)

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(req.Context().Err(), context.DeadlineExceeded) {
			return fmt.Errorf("assemblyai timeout after %s (%s %s)", timeout, req.Method, req.URL.Path)
		}
		return fmt.Errorf("assemblyai %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if readErr != nil {
			return fmt.Errorf("assemblyai status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return fmt.Errorf("assemblyai status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode assemblyai response: %w", err)
	}
	return nil
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`
	Text   string `json:"text"`
	Words  []struct {
		Text       string  `json:"text"`
		Start      int64   `json:"start"`
		End        int64   `json:"end"`
		Confidence float64 `json:"confidence"`
	} `json:"words"`
	SentimentAnalysisResults []struct {
		Text      string `json:"text"`
		Start     int64  `json:"start"`
		End       int64  `json:"end"`
		Sentiment string `json:"sentiment"`
	} `json:"sentiment_analysis_results"`
	AutoHighlightsResult *struct {
		Results []struct {
			Text string `json:"text"`
		} `json:"results"`
	} `json:"auto_highlights_result"`
}

func toTranscript(res transcriptResponse) (types.Transcript, error) {
	tr := types.Transcript{
		Text:      res.Text,
		Sentences: make([]types.Sentence, 0, len(res.SentimentAnalysisResults)),
		Words:     make([]types.Word, 0, len(res.Words)),
	}
	for i, s := range res.SentimentAnalysisResults {
		label, err := types.ParseSentiment(s.Sentiment)
		if err != nil {
			return types.Transcript{}, fmt.Errorf("assemblyai sentence %d: %w", i, err)
		}
		tr.Sentences = append(tr.Sentences, types.Sentence{
			Text:      strings.TrimSpace(s.Text),
			StartMs:   s.Start,
			EndMs:     s.End,
			Sentiment: label,
		})
	}
	for _, w := range res.Words {
		tr.Words = append(tr.Words, types.Word{Text: w.Text, StartMs: w.Start, EndMs: w.End, Confidence: w.Confidence})
	}
	if res.AutoHighlightsResult != nil {
		for _, h := range res.AutoHighlightsResult.Results {
			if len(tr.KeyPhrases) == maxKeyPhrases {
				break
			}
			tr.KeyPhrases = append(tr.KeyPhrases, h.Text)
		}
	}
	return tr, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
