package template

// builtinTemplates returns the templates shipped with the binary
func builtinTemplates() []*ServiceLineTemplate {
	return []*ServiceLineTemplate{mriLumbarSpine()}
}

func mriLumbarSpine() *ServiceLineTemplate {
	return &ServiceLineTemplate{
		ID:          "imaging-mri-lumbar-spine",
		Name:        "MRI Lumbar Spine",
		Description: "Prior authorization questionnaire for lumbar spine MRI",
		RequiredFieldIDs: []string{
			"primary_diagnosis",
			"symptom_duration_weeks",
			"conservative_therapy_weeks",
			"clinical_rationale",
		},
		EvidenceChecklist: []EvidenceItem{
			{ID: "clinical-note", Label: "Recent clinical note", Required: true},
			{ID: "therapy-log", Label: "Conservative therapy documentation", Required: true},
			{ID: "prior-imaging", Label: "Prior imaging report", Required: false},
		},
		Sections: []Section{
			{
				ID:    "clinical",
				Title: "Clinical Presentation",
				Fields: []FieldSpec{
					{ID: "primary_diagnosis", Label: "Primary diagnosis", Type: "text", Required: true},
					{ID: "symptom_duration_weeks", Label: "Symptom duration (weeks)", Type: "text", Required: true},
					{ID: "neurologic_deficit", Label: "Neurologic deficit present", Type: "select"},
				},
			},
			{
				ID:    "therapy",
				Title: "Conservative Therapy",
				Fields: []FieldSpec{
					{ID: "conservative_therapy_weeks", Label: "Conservative therapy duration (weeks)", Type: "text", Required: true},
					{ID: "pt_trial_documented", Label: "Physical therapy trial documented", Type: "select"},
				},
			},
			{
				ID:    "imaging",
				Title: "Prior Imaging",
				Fields: []FieldSpec{
					{ID: "prior_imaging_date", Label: "Date of prior imaging", Type: "date"},
				},
			},
			{
				ID:    "rationale",
				Title: "Clinical Rationale",
				Fields: []FieldSpec{
					{ID: "clinical_rationale", Label: "Clinical rationale", Type: "textarea", Required: true},
				},
			},
		},
	}
}
