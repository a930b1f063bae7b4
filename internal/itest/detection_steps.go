//go:build integration

package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"

	"github.com/wflores9/StudioBot.ai/internal/api"
	"github.com/wflores9/StudioBot.ai/internal/domain/clips"
	"github.com/wflores9/StudioBot.ai/internal/types"
)

type detectionState struct {
	sentences []types.Sentence
	params    clips.Params
	got       []types.ClipCandidate

	status   int
	apiBody  []byte
	apiError api.ErrorResponse
}

func initializeDetectionScenario(ctx *godog.ScenarioContext) {
	s := &detectionState{}
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		*s = detectionState{}
		return ctx, nil
	})

	ctx.Step(`^the sentences:$`, s.theSentences)
	ctx.Step(`^(\d+) sentences of (\d+)s alternating (\w+) and (\w+) with (\d+) words each$`, s.alternatingSentences)
	ctx.Step(`^(\d+) sentences of (\d+)s cycling (\w+), (\w+) and (\w+) with (\d+) words each$`, s.cyclingSentences)
	ctx.Step(`^(\d+) (\w+) sentences of (\d+)s with (\d+) words each$`, s.uniformSentences)
	ctx.Step(`^I detect clips with min (\d+)s, max (\d+)s and top (\d+)$`, s.iDetect)
	ctx.Step(`^(\d+) candidates? (?:is|are) returned$`, s.candidatesReturned)
	ctx.Step(`^candidate (\d+) spans (\d+)s to (\d+)s$`, s.candidateSpans)
	ctx.Step(`^candidate (\d+) has sentiment (\w+) and reason "([^"]*)"$`, s.candidateHas)
	ctx.Step(`^candidate (\d+) scores ([0-9.]+)$`, s.candidateScores)
	ctx.Step(`^every candidate lasts between (\d+)s and (\d+)s$`, s.everyCandidateLasts)
	ctx.Step(`^candidates are sorted by score descending$`, s.sortedDescending)
	ctx.Step(`^detecting again yields identical JSON$`, s.detectingAgain)
	ctx.Step(`^I post the sentences to the detect API with min (\d+)s and max (\d+)s$`, s.iPostToAPI)
	ctx.Step(`^the API responds with status (\d+) and code "([^"]*)"$`, s.apiRespondsWithCode)
	ctx.Step(`^the API responds with status (\d+) and (\d+) candidates?$`, s.apiRespondsWithCandidates)
}

func (s *detectionState) theSentences(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) != 4 {
			return fmt.Errorf("row %d: expected 4 cells", i)
		}
		start, err := strconv.Atoi(row.Cells[0].Value)
		if err != nil {
			return err
		}
		end, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return err
		}
		sent, err := types.ParseSentiment(row.Cells[2].Value)
		if err != nil {
			return err
		}
		words, err := strconv.Atoi(row.Cells[3].Value)
		if err != nil {
			return err
		}
		s.sentences = append(s.sentences, sentence(start, end, sent, words))
	}
	return nil
}

func (s *detectionState) uniformSentences(n int, label string, each, words int) error {
	return s.cyclingSentences(n, each, label, "", "", words)
}

func (s *detectionState) alternatingSentences(n, each int, a, b string, words int) error {
	return s.cyclingSentences(n, each, a, b, "", words)
}

func (s *detectionState) cyclingSentences(n, each int, a, b, c string, words int) error {
	var labels []types.Sentiment
	for _, v := range []string{a, b, c} {
		if v == "" {
			continue
		}
		sent, err := types.ParseSentiment(v)
		if err != nil {
			return err
		}
		labels = append(labels, sent)
	}
	for i := 0; i < n; i++ {
		s.sentences = append(s.sentences, sentence(i*each, (i+1)*each, labels[i%len(labels)], words))
	}
	return nil
}

func (s *detectionState) iDetect(minSec, maxSec, top int) error {
	s.params = clips.Params{
		MinClip: time.Duration(minSec) * time.Second,
		MaxClip: time.Duration(maxSec) * time.Second,
		TopN:    top,
	}
	got, err := clips.Detect(s.sentences, s.params)
	if err != nil {
		return err
	}
	s.got = got
	return nil
}

func (s *detectionState) candidatesReturned(n int) error {
	if len(s.got) != n {
		return fmt.Errorf("expected %d candidates, got %d", n, len(s.got))
	}
	return nil
}

func (s *detectionState) candidate(i int) (types.ClipCandidate, error) {
	if i < 1 || i > len(s.got) {
		return types.ClipCandidate{}, fmt.Errorf("no candidate %d (have %d)", i, len(s.got))
	}
	return s.got[i-1], nil
}

func (s *detectionState) candidateSpans(i, start, end int) error {
	c, err := s.candidate(i)
	if err != nil {
		return err
	}
	if c.StartTime != start || c.EndTime != end {
		return fmt.Errorf("candidate %d spans %d-%d, want %d-%d", i, c.StartTime, c.EndTime, start, end)
	}
	return nil
}

func (s *detectionState) candidateHas(i int, sentiment, reason string) error {
	c, err := s.candidate(i)
	if err != nil {
		return err
	}
	if c.Sentiment.String() != sentiment || c.Reason != reason {
		return fmt.Errorf("candidate %d: got %s / %q, want %s / %q", i, c.Sentiment, c.Reason, sentiment, reason)
	}
	return nil
}

func (s *detectionState) candidateScores(i int, want float64) error {
	c, err := s.candidate(i)
	if err != nil {
		return err
	}
	if c.Score != want {
		return fmt.Errorf("candidate %d scores %v, want %v", i, c.Score, want)
	}
	return nil
}

func (s *detectionState) everyCandidateLasts(minSec, maxSec int) error {
	for i, c := range s.got {
		d := c.EndTime - c.StartTime
		if d < minSec || d > maxSec {
			return fmt.Errorf("candidate %d lasts %ds, outside %d-%d", i+1, d, minSec, maxSec)
		}
	}
	return nil
}

func (s *detectionState) sortedDescending() error {
	for i := 1; i < len(s.got); i++ {
		if s.got[i].Score > s.got[i-1].Score {
			return fmt.Errorf("candidate %d (%v) outranks candidate %d (%v)", i+1, s.got[i].Score, i, s.got[i-1].Score)
		}
	}
	return nil
}

func (s *detectionState) detectingAgain() error {
	again, err := clips.Detect(s.sentences, s.params)
	if err != nil {
		return err
	}
	a, err := json.Marshal(s.got)
	if err != nil {
		return err
	}
	b, err := json.Marshal(again)
	if err != nil {
		return err
	}
	if !bytes.Equal(a, b) {
		return fmt.Errorf("second run differs:\n%s\n%s", a, b)
	}
	return nil
}

func (s *detectionState) iPostToAPI(minSec, maxSec int) error {
	body, err := json.Marshal(api.DetectRequest{
		Sentences:  s.sentences,
		MinClipSec: &minSec,
		MaxClipSec: &maxSec,
	})
	if err != nil {
		return err
	}

	srv := httptest.NewServer(api.NewRouter(api.ServerConfig{
		Params: clips.DefaultParams(),
		Logger: zerolog.Nop(),
	}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/detect", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return err
	}
	s.status = resp.StatusCode
	s.apiBody = buf.Bytes()
	if resp.StatusCode != http.StatusOK {
		return json.Unmarshal(s.apiBody, &s.apiError)
	}
	return nil
}

func (s *detectionState) apiRespondsWithCode(status int, code string) error {
	if s.status != status || s.apiError.Code != code {
		return fmt.Errorf("got %d %q, want %d %q", s.status, s.apiError.Code, status, code)
	}
	return nil
}

func (s *detectionState) apiRespondsWithCandidates(status, n int) error {
	if s.status != status {
		return fmt.Errorf("got status %d, want %d: %s", s.status, status, s.apiBody)
	}
	var resp api.DetectResponse
	if err := json.Unmarshal(s.apiBody, &resp); err != nil {
		return err
	}
	if len(resp.Candidates) != n {
		return fmt.Errorf("got %d candidates, want %d", len(resp.Candidates), n)
	}
	return nil
}

func sentence(startSec, endSec int, sent types.Sentiment, words int) types.Sentence {
	return types.Sentence{
		Text:      strings.TrimSpace(strings.Repeat("word ", words)),
		StartMs:   int64(startSec) * 1000,
		EndMs:     int64(endSec) * 1000,
		Sentiment: sent,
	}
}
