// Package feeds holds the per-form feed configuration of the integration and
// the host-side processing applied before a feed runs: conditional logic and
// shortcode substitution.
package feeds

// MetaKey prefixes the option holding a form's feeds.
const MetaKey = "cleverreach_feed"

// Feed is one per-form mapping from submitted data to a subscription request.
type Feed struct {
	ID       string `json:"id"`
	FormID   string `json:"form_id"`
	Settings Values `json:"settings"`
}

// Values are the admin-editable feed settings. Before a run, string values
// may still contain {inputs.*} shortcodes.
type Values struct {
	Name               string            `json:"name"`
	ListID             string            `json:"list_id"`
	Email              string            `json:"email"`
	Fields             map[string]string `json:"fields"`
	OtherFieldsMapping []FieldMapping    `json:"other_fields_mapping"`
	Conditionals       Conditionals      `json:"conditionals"`
	Resubscribe        bool              `json:"resubscribe"`
	Enabled            bool              `json:"enabled"`
}

// FieldMapping pairs a remote attribute (Label) with a value.
type FieldMapping struct {
	ItemValue string `json:"item_value"`
	Label     string `json:"label"`
}

// Processed is a feed together with its values resolved against one submission.
type Processed struct {
	Feed            Feed
	ProcessedValues Values
}
