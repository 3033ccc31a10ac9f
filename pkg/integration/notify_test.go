package integration

import (
	"context"
	"testing"

	"github.com/natserract/ffcleverreach/pkg/cleverreach"
	"github.com/natserract/ffcleverreach/pkg/feeds"
	"github.com/natserract/ffcleverreach/pkg/logsink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func processedFeed(values feeds.Values) feeds.Processed {
	return feeds.Processed{
		Feed:            feeds.Feed{ID: "feed-1", FormID: "3", Settings: feeds.Values{Name: "Newsletter"}},
		ProcessedValues: values,
	}
}

func TestNotify_InvalidEmailSkipsRemoteCall(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		formData map[string]interface{}
	}{
		{"empty", "", map[string]interface{}{}},
		{"not an email", "jane", map[string]interface{}{"jane": "still not an email"}},
		{"unresolvable field", "contact.email", map[string]interface{}{"contact": map[string]interface{}{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, connectedSettings())

			h.integration.Notify(context.Background(), processedFeed(feeds.Values{ListID: "77", Email: tt.email}), tt.formData, Entry{ID: "9"}, Form{ID: "3"})

			assert.Empty(t, h.api.Calls())
			assert.Empty(t, h.sink.records)
			require.Len(t, h.sink.results, 1)
			assert.Equal(t, logsink.ActionResult{
				FeedID:   "feed-1",
				FeedName: "Newsletter",
				Status:   logsink.StatusFailed,
				Note:     "Clever Reach API call has been skipped because no valid email available",
			}, h.sink.results[0])
		})
	}
}

func TestNotify_ResolvesEmailFromFormData(t *testing.T) {
	h := newHarness(t, connectedSettings())
	formData := map[string]interface{}{
		"contact": map[string]interface{}{"email": "jane@example.com"},
	}

	h.integration.Notify(context.Background(), processedFeed(feeds.Values{ListID: "77", Email: "contact.email"}), formData, Entry{ID: "9"}, Form{ID: "3"})

	require.Len(t, h.api.subscribed, 1)
	assert.Equal(t, "jane@example.com", h.api.subscribed[0].Email)
}

func TestNotify_LastOtherFieldWins(t *testing.T) {
	h := newHarness(t, connectedSettings())
	values := feeds.Values{
		ListID: "77",
		Email:  "jane@example.com",
		Fields: map[string]string{"firstname": "Jane", "city": "Hamburg"},
		OtherFieldsMapping: []feeds.FieldMapping{
			{Label: "city", ItemValue: "A"},
			{Label: "", ItemValue: "ignored"},
			{Label: "city", ItemValue: "B"},
		},
	}

	h.integration.Notify(context.Background(), processedFeed(values), nil, Entry{ID: "9"}, Form{ID: "3"})

	require.Len(t, h.api.subscribed, 1)
	sub := h.api.subscribed[0]
	assert.Equal(t, "77", sub.ListID)
	assert.Equal(t, map[string]string{"firstname": "Jane", "city": "B"}, sub.Attributes)
}

func TestNotify_SuccessRecord(t *testing.T) {
	h := newHarness(t, connectedSettings())

	h.integration.Notify(context.Background(), processedFeed(feeds.Values{ListID: "77", Email: "jane@example.com"}), nil, Entry{ID: "9"}, Form{ID: "3"})

	assert.Empty(t, h.sink.results)
	require.Len(t, h.sink.records, 1)
	assert.Equal(t, logsink.Record{
		ParentSourceID: "3",
		SourceType:     "submission_item",
		SourceID:       "9",
		Component:      "cleverreach",
		Status:         logsink.StatusSuccess,
		Title:          "Newsletter",
		Description:    "Clever reach has been successfully initialed and pushed data",
		CreatedAt:      testNow,
	}, h.sink.records[0])
}

func TestNotify_FailureRecordCarriesRemoteMessage(t *testing.T) {
	h := newHarness(t, connectedSettings())
	h.api.subscribeErr = &cleverreach.Error{Code: cleverreach.CodeRequestFailed, Message: "duplicate receiver"}

	h.integration.Notify(context.Background(), processedFeed(feeds.Values{ListID: "77", Email: "jane@example.com"}), nil, Entry{ID: "9"}, Form{ID: "3"})

	require.Len(t, h.sink.records, 1)
	assert.Equal(t, logsink.StatusFailed, h.sink.records[0].Status)
	assert.Equal(t, "duplicate receiver", h.sink.records[0].Description)
}

func TestIsEmail(t *testing.T) {
	assert.True(t, isEmail("jane@example.com"))
	assert.True(t, isEmail("jane.doe+news@mail.example.co"))
	assert.False(t, isEmail(""))
	assert.False(t, isEmail("jane"))
	assert.False(t, isEmail("jane@localhost"))
	assert.False(t, isEmail("Jane <jane@example.com>"))
	assert.False(t, isEmail("jane@example."))
}
