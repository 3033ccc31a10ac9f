package cleverreach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	httpclient "github.com/natserract/ffcleverreach/pkg/http"
	"go.uber.org/zap"
)

// MakeRequest issues an authenticated request with a form-encoded body and
// returns the decoded JSON body. Content-Type is always forced to
// application/x-www-form-urlencoded. A body that is not JSON decodes to nil.
//
// Transport failures and bodies carrying a truthy "error" field are returned
// as *Error with code 423. The message is taken from error_description, then
// error.message, and defaults to "Unknown Error".
func (c *Client) MakeRequest(ctx context.Context, url string, body map[string]interface{}, method string, headers map[string]string) (json.RawMessage, error) {
	reqHeaders := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		if strings.EqualFold(k, "Content-Type") {
			continue
		}
		reqHeaders[k] = v
	}
	reqHeaders["Content-Type"] = httpclient.ContentTypeForm

	opts := httpclient.RequestOptions{
		Method:  method,
		URL:     url,
		Headers: reqHeaders,
		Context: ctx,
	}
	if len(body) > 0 {
		opts.Body = body
	}

	c.logger.Debug("Making CleverReach request", zap.String("method", method), zap.String("url", url))
	resp, err := c.httpClient.Do(opts)
	if err != nil {
		c.logger.Error("CleverReach request failed", zap.Error(err), zap.String("method", method), zap.String("url", url))
		return nil, requestFailed(err.Error(), err)
	}

	raw := bytes.TrimSpace(resp.Body)
	if !json.Valid(raw) {
		c.logger.Warn("CleverReach response is not JSON",
			zap.Int("status_code", resp.StatusCode),
			zap.String("url", url))
		return nil, nil
	}

	if message, failed := remoteError(raw); failed {
		c.logger.Error("CleverReach returned an error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("method", method),
			zap.String("url", url),
			zap.String("message", message))
		return nil, requestFailed(message, nil)
	}

	return json.RawMessage(raw), nil
}

// remoteError inspects a decoded body for a truthy "error" field.
func remoteError(raw []byte) (string, bool) {
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", false
	}
	errField, ok := body["error"]
	if !ok || !truthy(errField) {
		return "", false
	}

	if description, ok := body["error_description"]; ok && description != nil {
		return fmt.Sprint(description), true
	}
	if nested, ok := errField.(map[string]interface{}); ok {
		if message, ok := nested["message"]; ok && truthy(message) {
			return fmt.Sprint(message), true
		}
	}
	return unknownErrorMessage, true
}

// truthy mirrors loose emptiness: nil, false, "", "0", 0 and empty
// collections are all empty.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	case float64:
		return t != 0
	case map[string]interface{}:
		return len(t) > 0
	case []interface{}:
		return len(t) > 0
	default:
		return true
	}
}

// isEmptyBody reports whether a decoded body carries nothing.
func isEmptyBody(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	return !truthy(v)
}
