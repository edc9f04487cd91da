package node

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kdocs/flowd/util"
)

// webhookAction posts a JSON payload to an external endpoint. Payload values
// are resolved against the execution context before sending, so a payload of
// {"doc": "{document_id}", "total": "{$.amount}"} carries live context data.
type webhookAction struct {
	baseExecutor
	client *http.Client
}

var _ Executor = new(webhookAction)

func NewWebhookAction(client *http.Client) *webhookAction {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &webhookAction{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"url":     {Type: "string", Required: true},
			"method":  {Type: "string", Enum: []string{"POST", "PUT"}, Default: "POST"},
			"headers": {Type: "object"},
			"payload": {Type: "object"},
		}),
		client: client,
	}
}

func (a *webhookAction) Execute(bag *ContextBag, config map[string]any) Result {
	rawUrl := strings.TrimSpace(cfgString(config, "url", ""))
	parsed, err := url.Parse(rawUrl)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return Failed(fmt.Sprintf("invalid webhook url: %s", rawUrl))
	}

	data := bag.Data()
	payload := util.ResolveParams(data, cfgMap(config, "payload"))
	if payload == nil {
		payload = map[string]any{}
	}
	payload["execution_id"] = bag.ExecutionId()
	payload["document_id"] = bag.DocumentId()
	payload["workflow_id"] = bag.WorkflowId()

	body, err := json.Marshal(payload)
	if err != nil {
		return Failed(err.Error())
	}
	method := cfgString(config, "method", "POST")
	req, err := http.NewRequest(method, rawUrl, bytes.NewReader(body))
	if err != nil {
		return Failed(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	for name, value := range cfgMap(config, "headers") {
		req.Header.Set(name, util.ResolveString(data, asString(value)))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return Failed(fmt.Sprintf("webhook request failed: %v", err))
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode >= 400 {
		return Failed(fmt.Sprintf("webhook returned status %d", resp.StatusCode))
	}
	return Success(map[string]any{
		"status_code": resp.StatusCode,
		"response":    string(respBody),
	})
}
