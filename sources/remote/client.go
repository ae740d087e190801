package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"steinberg/sources/platform"
	"steinberg/sources/session"
	"steinberg/sources/tracing"
)

// AdvisorClient speaks the advisor wire contract over HTTP. Streamed replies
// arrive as SSE frames and are fed to the caller's consumer as raw chunks.
type AdvisorClient struct {
	http   *http.Client
	config *AdvisorEndpointConfig
}

func NewAdvisorClient(client *http.Client, config *AdvisorEndpointConfig) *AdvisorClient {
	return &AdvisorClient{http: client, config: config}
}

type wireError struct {
	Error string `json:"error"`
}

type summarizeRequest struct {
	Messages []platform.WireMessage `json:"messages"`
	Locale   string                 `json:"locale"`
}

func (x *AdvisorClient) StreamMessage(ctx context.Context, logger *tracing.Logger, request *session.ChatRequest, consumer *session.StreamConsumer) error {
	defer tracing.ProfilePoint(logger, "Advisor stream completed", "remote.advisor.stream")()

	request.Stream = true

	resp, err := x.post(ctx, x.config.ChatURL(), request, "text/event-stream")
	if err != nil {
		logger.E("Failed to reach advisor", tracing.InnerError, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return x.drainError(logger, resp)
	}

	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			consumer.Feed(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.E("Advisor stream broke", tracing.InnerError, err, tracing.StreamLines, consumer.Lines())
			return err
		}
	}

	consumer.Flush()

	logger.I("advisor_stream_drained", tracing.StreamLines, consumer.Lines(), "logical_done", consumer.Done())

	// a stream that reached EOF without the done sentinel was cut short
	// upstream and must settle as a failed exchange
	if !consumer.Done() {
		logger.E("Advisor stream ended before completion", tracing.StreamLines, consumer.Lines())
		return fmt.Errorf("advisor stream ended before completion")
	}
	return nil
}

func (x *AdvisorClient) SendMessage(ctx context.Context, logger *tracing.Logger, request *session.ChatRequest) (*session.ChatResponse, error) {
	defer tracing.ProfilePoint(logger, "Advisor exchange completed", "remote.advisor.send")()

	request.Stream = false

	resp, err := x.post(ctx, x.config.ChatURL(), request, "application/json")
	if err != nil {
		logger.E("Failed to reach advisor", tracing.InnerError, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, x.drainError(logger, resp)
	}

	var response session.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		logger.E("Failed to decode advisor response", tracing.InnerError, err)
		return nil, err
	}

	return &response, nil
}

func (x *AdvisorClient) Summarize(ctx context.Context, logger *tracing.Logger, messages []platform.WireMessage, locale string) (*session.SummaryResult, error) {
	defer tracing.ProfilePoint(logger, "Summary exchange completed", "remote.advisor.summarize")()

	resp, err := x.post(ctx, x.config.SummarizeURL(), &summarizeRequest{Messages: messages, Locale: locale}, "application/json")
	if err != nil {
		logger.E("Failed to reach summarizer", tracing.InnerError, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, x.drainError(logger, resp)
	}

	var result session.SummaryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.E("Failed to decode summary response", tracing.InnerError, err)
		return nil, err
	}

	return &result, nil
}

func (x *AdvisorClient) post(ctx context.Context, url string, payload any, accept string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)

	return x.http.Do(req)
}

func (x *AdvisorClient) drainError(logger *tracing.Logger, resp *http.Response) error {
	var wire wireError
	if err := json.NewDecoder(resp.Body).Decode(&wire); err == nil && wire.Error != "" {
		logger.E("Advisor rejected request", "status", resp.StatusCode, "advisor_error", wire.Error)
		return fmt.Errorf("advisor returned %d: %s", resp.StatusCode, wire.Error)
	}

	logger.E("Advisor rejected request", "status", resp.StatusCode)
	return fmt.Errorf("advisor returned %d", resp.StatusCode)
}
