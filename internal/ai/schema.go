package ai

import genai "google.golang.org/genai"

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

var flashcardsSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question": str("A question about a key concept from the text."),
			"answer":   str("A concise answer to the question."),
		},
		Required: []string{"question", "answer"},
	},
}

// mindMapSchema is inlined three levels deep; the API does not accept
// recursive schemas.
var mindMapSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name": str("The main subject or root node of the mind map."),
		"children": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name": str("A key topic."),
					"children": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"name": str("A sub-topic or leaf concept."),
							},
							Required: []string{"name"},
						},
					},
				},
				Required: []string{"name"},
			},
		},
	},
	Required: []string{"name"},
}

var quizSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question": str("A multiple-choice question about the text."),
			"options": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "An array of 4 possible answers.",
			},
			"correctAnswer": str("The correct answer, which must be one of the strings in the 'options' array."),
		},
		Required: []string{"question", "options", "correctAnswer"},
	},
}

var chartSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"labels": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "The labels for the X-axis of a bar chart.",
		},
		"datasets": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"label": str("The label for this dataset (e.g., 'Key Statistics')."),
					"data": {
						Type:        genai.TypeArray,
						Items:       &genai.Schema{Type: genai.TypeNumber},
						Description: "The numerical data points corresponding to the labels.",
					},
				},
				Required: []string{"label", "data"},
			},
			Description: "An array of datasets for the chart. Usually just one.",
		},
	},
	Required: []string{"labels", "datasets"},
}
