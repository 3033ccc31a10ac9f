package integration

import (
	"context"

	"github.com/natserract/ffcleverreach/pkg/cleverreach"
	"github.com/natserract/ffcleverreach/pkg/feeds"
	"go.uber.org/zap"
)

const configInstruction = `<div>
    <h4>To Authenticate Clever Reach you have to enable your API first</h4>
    <ol>
        <li>Go to Your Clever reach account dashboard, Click on the profile icon on the top right
            corner. Click on My Account >> Extras >> REST Api then click on Create an OAuth App now button.
        </li>
        <li>Then give your oauth app a name >> choose REST API Version 3 >> Select the Forms scope >> Redirect
            URL should be '*' and save it.<br/>
        </li>
        <li>Paste your clever reach account Client Id and Secret Id. Then click save settings.
        </li>
    </ol>
</div>`

// GlobalFields describes the global settings screen.
type GlobalFields struct {
	Logo              string                `json:"logo"`
	MenuTitle         string                `json:"menu_title"`
	MenuDescription   string                `json:"menu_description"`
	ValidMessage      string                `json:"valid_message"`
	InvalidMessage    string                `json:"invalid_message"`
	SaveButtonText    string                `json:"save_button_text"`
	ConfigInstruction string                `json:"config_instruction"`
	Fields            map[string]InputField `json:"fields"`
	HideOnValid       bool                  `json:"hide_on_valid"`
	DiscardSettings   DiscardSettings       `json:"discard_settings"`
}

type InputField struct {
	Type        string `json:"type"`
	Placeholder string `json:"placeholder"`
	LabelTips   string `json:"label_tips"`
	Label       string `json:"label"`
}

// DiscardSettings configures the disconnect button shown once connected.
type DiscardSettings struct {
	SectionDescription string            `json:"section_description"`
	ButtonText         string            `json:"button_text"`
	Data               map[string]string `json:"data"`
	ShowVerify         bool              `json:"show_verify"`
}

func (i *Integration) GetGlobalFields() GlobalFields {
	return GlobalFields{
		Logo:              i.logo(),
		MenuTitle:         "Clever Reach Settings",
		MenuDescription:   Description,
		ValidMessage:      "Your Clever Reach API Key is valid",
		InvalidMessage:    "Your Clever Reach API Key is not valid",
		SaveButtonText:    "Save Settings",
		ConfigInstruction: configInstruction,
		Fields: map[string]InputField{
			"client_id": {
				Type:        "text",
				Placeholder: "Clever Reach Client ID",
				LabelTips:   "Enter your Clever Reach Client ID",
				Label:       "Clever Reach Client ID",
			},
			"client_secret": {
				Type:        "password",
				Placeholder: "Clever Reach App Client Secret",
				LabelTips:   "Enter your Clever Reach Client secret",
				Label:       "Clever Reach Client Secret",
			},
		},
		HideOnValid: true,
		DiscardSettings: DiscardSettings{
			SectionDescription: "Your Clever Reach API integration is up and running",
			ButtonText:         "Disconnect Clever Reach",
			Data: map[string]string{
				"client_id":     "",
				"client_secret": "",
				"access_token":  "",
			},
			ShowVerify: true,
		},
	}
}

// SettingsFields describes the per-form feed editor.
type SettingsFields struct {
	Fields           []SettingsField `json:"fields"`
	IntegrationTitle string          `json:"integration_title"`
}

type SettingsField struct {
	Key              string            `json:"key"`
	Label            string            `json:"label"`
	Required         bool              `json:"required,omitempty"`
	Placeholder      string            `json:"placeholder,omitempty"`
	Tips             string            `json:"tips,omitempty"`
	Component        string            `json:"component"`
	Options          map[string]string `json:"options,omitempty"`
	RequireList      *bool             `json:"require_list,omitempty"`
	FieldLabelRemote string            `json:"field_label_remote,omitempty"`
	FieldLabelLocal  string            `json:"field_label_local,omitempty"`
	// The admin UI reads this list under the misspelled key.
	PrimaryFields []PrimaryField `json:"primary_fileds,omitempty"`
}

type PrimaryField struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	Required     bool   `json:"required"`
	InputOptions string `json:"input_options"`
}

// GetSettingsFields describes the feed editor of a form. The list dropdown is
// populated from the connected account.
func (i *Integration) GetSettingsFields(ctx context.Context, formID string) SettingsFields {
	requireList, optionalList := true, false
	return SettingsFields{
		Fields: []SettingsField{
			{
				Key:         "name",
				Label:       "Feed Name",
				Required:    true,
				Placeholder: "Your Feed Name",
				Component:   "text",
			},
			{
				Key:         "list_id",
				Label:       "Clever Reach List",
				Placeholder: "Select clever reach List",
				Tips:        "Select the Clever Reach list you would like to add your contacts to.",
				Component:   "list_ajax_options",
				Options:     i.GetLists(ctx),
			},
			{
				Key:              "fields",
				RequireList:      &requireList,
				Label:            "Map Fields",
				Tips:             "Associate your Clever Reach merge tags to the appropriate Fluent Form fields by selecting the appropriate form field from the list.",
				Component:        "map_fields",
				FieldLabelRemote: "Clever Reach Field",
				FieldLabelLocal:  "Form Field",
				PrimaryFields: []PrimaryField{
					{Key: "email", Label: "Email Address", Required: true, InputOptions: "emails"},
				},
			},
			{
				Key:              "other_fields_mapping",
				RequireList:      &optionalList,
				Label:            "Other Fields",
				Tips:             "Select which Fluent Form fields pair with their<br /> respective Clever Reach fields.",
				Component:        "dropdown_many_fields",
				FieldLabelRemote: "Clever Reach Field",
				FieldLabelLocal:  "Clever Reach Field",
				Options:          OtherFields(),
			},
		},
		IntegrationTitle: Title,
	}
}

// IntegrationDefaults is the initial state of a new feed.
type IntegrationDefaults struct {
	Name               string               `json:"name"`
	ListID             string               `json:"list_id"`
	Email              string               `json:"email"`
	Firstname          string               `json:"firstname"`
	Lastname           string               `json:"lastname"`
	Website            string               `json:"website"`
	Company            string               `json:"company"`
	Phone              string               `json:"phone"`
	Address            string               `json:"address"`
	City               string               `json:"city"`
	State              string               `json:"state"`
	Zip                string               `json:"zip"`
	Fields             map[string]string    `json:"fields"`
	OtherFieldsMapping []feeds.FieldMapping `json:"other_fields_mapping"`
	Conditionals       feeds.Conditionals   `json:"conditionals"`
	Resubscribe        bool                 `json:"resubscribe"`
	Enabled            bool                 `json:"enabled"`
}

func (i *Integration) GetIntegrationDefaults(formID string) IntegrationDefaults {
	return IntegrationDefaults{
		Fields:             map[string]string{},
		OtherFieldsMapping: []feeds.FieldMapping{{ItemValue: "", Label: ""}},
		Conditionals:       feeds.DefaultConditionals(),
		Resubscribe:        false,
		Enabled:            true,
	}
}

// OtherFields lists the receiver attributes a feed may map beyond the list's
// own attributes. CleverReach rejects arbitrary global attributes, so the set
// is fixed.
func OtherFields() map[string]string {
	return map[string]string{
		"firstname": "First Name",
		"lastname":  "Last Name",
		"company":   "Company",
		"website":   "Website",
		"phone":     "Phone",
		"address":   "Address",
		"city":      "City",
		"state":     "State",
		"zipcode":   "Zipcode",
		"country":   "Country",
	}
}

// GetLists maps list ids to names. Any failure yields an empty map.
func (i *Integration) GetLists(ctx context.Context) map[string]string {
	lists := map[string]string{}

	client, _, err := i.remoteClient(ctx)
	if err != nil {
		i.logger.Warn("Failed to load settings", zap.Error(err))
		return lists
	}

	groups, err := client.Groups(ctx)
	if err != nil {
		i.logger.Warn("Failed to fetch CleverReach lists", zap.String("message", cleverreach.Message(err)))
		return lists
	}

	for _, g := range groups {
		lists[g.ID.String()] = g.Name
	}
	return lists
}

// GetMergeFields maps the attribute names of a list to themselves. It
// reports false when the integration is not connected or the lookup fails.
func (i *Integration) GetMergeFields(ctx context.Context, listID string) (map[string]string, bool) {
	if !i.IsConfigured(ctx) {
		return nil, false
	}

	client, _, err := i.remoteClient(ctx)
	if err != nil {
		i.logger.Warn("Failed to load settings", zap.Error(err))
		return nil, false
	}

	attributes, err := client.GroupAttributes(ctx, listID)
	if err != nil {
		i.logger.Warn("Failed to fetch CleverReach attributes",
			zap.String("list_id", listID),
			zap.String("message", cleverreach.Message(err)))
		return nil, false
	}
	if len(attributes) == 0 {
		return nil, false
	}

	fields := make(map[string]string, len(attributes))
	for _, a := range attributes {
		fields[a.Name] = a.Name
	}
	return fields, true
}
