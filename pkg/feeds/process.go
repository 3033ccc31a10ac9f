package feeds

import (
	"regexp"
	"strings"
)

var shortcodePattern = regexp.MustCompile(`\{inputs\.([^{}]+)\}`)

// Process resolves {inputs.path} shortcodes in the feed's mappable values
// against the submitted data. Unknown inputs resolve to an empty string.
func Process(feed Feed, formData map[string]interface{}) Processed {
	in := feed.Settings
	out := in

	out.ListID = parse(in.ListID, formData)
	out.Email = parse(in.Email, formData)

	if in.Fields != nil {
		out.Fields = make(map[string]string, len(in.Fields))
		for k, v := range in.Fields {
			out.Fields[k] = parse(v, formData)
		}
	}

	if in.OtherFieldsMapping != nil {
		out.OtherFieldsMapping = make([]FieldMapping, len(in.OtherFieldsMapping))
		for i, m := range in.OtherFieldsMapping {
			out.OtherFieldsMapping[i] = FieldMapping{
				ItemValue: parse(m.ItemValue, formData),
				Label:     m.Label,
			}
		}
	}

	return Processed{Feed: feed, ProcessedValues: out}
}

func parse(value string, formData map[string]interface{}) string {
	if !strings.Contains(value, "{inputs.") {
		return value
	}
	return shortcodePattern.ReplaceAllStringFunc(value, func(code string) string {
		path := shortcodePattern.FindStringSubmatch(code)[1]
		v, _ := Lookup(formData, strings.TrimSpace(path))
		return Stringify(v)
	})
}
