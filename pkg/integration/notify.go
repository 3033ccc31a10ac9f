package integration

import (
	"context"
	"net/mail"
	"strings"

	"github.com/natserract/ffcleverreach/pkg/cleverreach"
	"github.com/natserract/ffcleverreach/pkg/feeds"
	"github.com/natserract/ffcleverreach/pkg/logsink"
	"go.uber.org/zap"
)

const (
	skippedNote    = "Clever Reach API call has been skipped because no valid email available"
	successMessage = "Clever reach has been successfully initialed and pushed data"
)

// Entry identifies the stored submission.
type Entry struct {
	ID string `json:"id"`
}

// Form identifies the submitted form.
type Form struct {
	ID string `json:"id"`
}

// Notify pushes one submission to CleverReach through a processed feed. It
// never fails the submission: outcomes go to the log sink.
func (i *Integration) Notify(ctx context.Context, feed feeds.Processed, formData map[string]interface{}, entry Entry, form Form) {
	values := feed.ProcessedValues

	email := strings.TrimSpace(values.Email)
	if !isEmail(email) {
		v, _ := feeds.Lookup(formData, email)
		email = strings.TrimSpace(feeds.Stringify(v))
	}

	if !isEmail(email) {
		i.actionResult(ctx, logsink.ActionResult{
			FeedID:   feed.Feed.ID,
			FeedName: feed.Feed.Settings.Name,
			Status:   logsink.StatusFailed,
			Note:     skippedNote,
		})
		return
	}

	attributes := make(map[string]string, len(values.Fields)+len(values.OtherFieldsMapping))
	for k, v := range values.Fields {
		attributes[k] = v
	}
	for _, item := range values.OtherFieldsMapping {
		if item.Label == "" {
			continue
		}
		attributes[item.Label] = item.ItemValue
	}

	subscriber := cleverreach.Subscriber{
		ListID:     values.ListID,
		Email:      email,
		Attributes: attributes,
	}

	record := logsink.Record{
		ParentSourceID: form.ID,
		SourceType:     logsink.SourceSubmissionItem,
		SourceID:       entry.ID,
		Component:      Key,
		Title:          feed.Feed.Settings.Name,
		CreatedAt:      i.now(),
	}

	client, _, err := i.remoteClient(ctx)
	if err == nil {
		_, err = client.Subscribe(ctx, subscriber)
	}

	if err != nil {
		record.Status = logsink.StatusFailed
		record.Description = cleverreach.Message(err)
	} else {
		record.Status = logsink.StatusSuccess
		record.Description = successMessage
	}
	i.logData(ctx, record)
}

func (i *Integration) actionResult(ctx context.Context, result logsink.ActionResult) {
	if err := i.sink.ActionResult(ctx, result); err != nil {
		i.logger.Error("Failed to record action result", zap.Error(err), zap.String("feed_id", result.FeedID))
	}
}

func (i *Integration) logData(ctx context.Context, record logsink.Record) {
	if err := i.sink.LogData(ctx, record); err != nil {
		i.logger.Error("Failed to write submission log", zap.Error(err), zap.String("source_id", record.SourceID))
	}
}

// isEmail accepts a bare address with a dotted domain.
func isEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
