package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jkarimi/wacrm-backend/internal/service"
)

func TestRenderTemplate(t *testing.T) {
	cases := []struct {
		name     string
		template string
		record   map[string]string
		want     string
	}{
		{
			name:     "simple substitution",
			template: "Hello {{name}}, your order of {{product}} is ready!",
			record:   map[string]string{"name": "Alice", "product": "Widget"},
			want:     "Hello Alice, your order of Widget is ready!",
		},
		{
			name:     "missing key left verbatim",
			template: "Hi {{name}}, see {{missing}}",
			record:   map[string]string{"name": "Bob"},
			want:     "Hi Bob, see {{missing}}",
		},
		{
			name:     "repeated placeholder",
			template: "{{name}} {{name}} {{name}}",
			record:   map[string]string{"name": "x"},
			want:     "x x x",
		},
		{
			name:     "empty template",
			template: "",
			record:   map[string]string{"name": "x"},
			want:     "",
		},
		{
			name:     "no placeholders",
			template: "plain text",
			record:   map[string]string{"name": "x"},
			want:     "plain text",
		},
		{
			name:     "value containing placeholder syntax is not re-expanded",
			template: "Hello {{name}}",
			record:   map[string]string{"name": "{{phone}}", "phone": "+254700000001"},
			want:     "Hello {{phone}}",
		},
		{
			name:     "empty value",
			template: "a{{gap}}b",
			record:   map[string]string{"gap": ""},
			want:     "ab",
		},
		{
			name:     "non-word placeholder left verbatim",
			template: "keep {{first name}} and {{a-b}}",
			record:   map[string]string{"first name": "x", "a-b": "y"},
			want:     "keep {{first name}} and {{a-b}}",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.RenderTemplate(tc.template, tc.record))
		})
	}
}

func TestExtractPlaceholders(t *testing.T) {
	names := service.ExtractPlaceholders("Hi {{name}}, order {{order_id}} for {{name}} ships to {{city}}")
	assert.Equal(t, []string{"name", "order_id", "city"}, names)

	assert.Empty(t, service.ExtractPlaceholders("no placeholders here"))
	assert.Empty(t, service.ExtractPlaceholders(""))
}
