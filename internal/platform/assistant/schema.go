package assistant

// moduleListSchema mirrors types.Module: a type discriminant plus exactly one
// payload object. Kept loose (strict=false) so the model can omit the unused
// payload fields instead of nulling all of them.
func moduleListSchema() map[string]any {
	str := map[string]any{"type": "string"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"modules": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type": map[string]any{
							"type": "string",
							"enum": []string{"text", "video", "quiz", "cards", "timeline", "experiment"},
						},
						"title": str,
						"text": map[string]any{
							"type":       "object",
							"properties": map[string]any{"html": str},
							"required":   []string{"html"},
						},
						"video": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"url":    str,
								"source": map[string]any{"type": "string", "enum": []string{"youtube", "vimeo", "file"}},
							},
							"required": []string{"url", "source"},
						},
						"quiz": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"questions": map[string]any{
									"type": "array",
									"items": map[string]any{
										"type": "object",
										"properties": map[string]any{
											"prompt":      str,
											"options":     map[string]any{"type": "array", "items": str},
											"answer":      map[string]any{"type": "integer"},
											"explanation": str,
										},
										"required": []string{"prompt", "options", "answer"},
									},
								},
							},
							"required": []string{"questions"},
						},
						"cards": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"cards": map[string]any{
									"type": "array",
									"items": map[string]any{
										"type":       "object",
										"properties": map[string]any{"front": str, "back": str},
										"required":   []string{"front", "back"},
									},
								},
							},
							"required": []string{"cards"},
						},
						"timeline": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"events": map[string]any{
									"type": "array",
									"items": map[string]any{
										"type":       "object",
										"properties": map[string]any{"label": str, "title": str, "body": str},
										"required":   []string{"label", "title"},
									},
								},
							},
							"required": []string{"events"},
						},
						"experiment": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"goal":       str,
								"materials":  map[string]any{"type": "array", "items": str},
								"steps_html": str,
							},
							"required": []string{"goal", "steps_html"},
						},
					},
					"required": []string{"type", "title"},
				},
			},
		},
		"required": []string{"modules"},
	}
}
