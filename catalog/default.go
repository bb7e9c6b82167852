package catalog

import "github.com/dmms090191-rgb/duerp-sub001/models"

// DefaultSectorID is the sector every unknown sector id falls back to.
const DefaultSectorID = "general"

// DefaultCatalog returns the built-in generic business-risk catalog.
// Sector-specific catalogs (trades, food service, office work, ...) live in
// YAML files in the catalog directory; this one ships with the binary so a
// catalog lookup can always succeed.
// Note: definitions are hardcoded here the same way sector files are laid
// out; the registry runs them through the same finalize/Validate pipeline.
func DefaultCatalog() *models.QuestionCatalog {
	return &models.QuestionCatalog{
		SectorID:    DefaultSectorID,
		SectorLabel: "General business activity",
		Categories: []models.Category{
			// Premises and circulation: applies to every business, no gate.
			{
				ID:            "cat_premises",
				Label:         "Premises and circulation",
				DisplayNumber: "1",
				DefaultDescription: "Risks linked to the state of the premises: floors, stairs, " +
					"lighting, and the movement of people and goods through the workplace.",
				Questions: []models.Question{
					{
						ID:            "q_floors",
						DisplayNumber: "1.1",
						Text:          "Are floors, stairs and walkways kept clear, even and non-slippery?",
						Measures: []models.Measure{
							{ID: "m_floors_marking", Text: "Mark and light circulation paths, keep them free of stored goods"},
							{ID: "m_floors_cleaning", Text: "Clean up spills immediately and signal wet floors"},
							{ID: "m_floors_repair", Text: "Repair damaged floor coverings and stair nosings without delay"},
						},
					},
					{
						ID:            "q_lighting",
						DisplayNumber: "1.2",
						Text:          "Is lighting sufficient for the tasks performed at each workstation?",
						Measures: []models.Measure{
							{ID: "m_lighting_levels", Text: "Measure lighting levels and adapt them to the task"},
							{ID: "m_lighting_maintenance", Text: "Replace defective lamps as part of routine maintenance"},
						},
					},
					{
						ID:            "q_emergency_exits",
						DisplayNumber: "1.3",
						Text:          "Are emergency exits marked, unlocked and kept free of obstacles?",
						Measures: []models.Measure{
							{ID: "m_exits_signage", Text: "Install illuminated exit signage"},
							{ID: "m_exits_checks", Text: "Include exit clearance in periodic safety walkthroughs"},
						},
					},
				},
			},
			// Work equipment: the first question gates the machinery category below.
			{
				ID:            "cat_equipment",
				Label:         "Work equipment",
				DisplayNumber: "2",
				Questions: []models.Question{
					{
						ID:              "q_uses_machinery",
						DisplayNumber:   "2.1",
						Text:            "Does your activity involve powered machinery or motorized tools?",
						Kind:            models.QuestionGate,
						InformationText: "Fixed machines, portable power tools and lifting equipment all count.",
					},
				},
			},
			{
				ID:                   "cat_machinery",
				Label:                "Machinery safety",
				DisplayNumber:        "3",
				ParentGateQuestionID: "q_uses_machinery",
				Questions: []models.Question{
					{
						ID:            "q_machine_guards",
						DisplayNumber: "3.1",
						Text:          "Are moving parts of machines fitted with guards that are kept in place?",
						Measures: []models.Measure{
							{ID: "m_guards_check", Text: "Inspect guards at each shift start and forbid operation without them"},
							{ID: "m_guards_interlock", Text: "Fit interlocks that stop the machine when a guard is opened"},
						},
					},
					{
						ID:            "q_machine_training",
						DisplayNumber: "3.2",
						Text:          "Are operators trained and authorized for each machine they use?",
						Measures: []models.Measure{
							{ID: "m_training_records", Text: "Keep written training and authorization records per operator"},
							{ID: "m_training_refresher", Text: "Schedule periodic refresher training"},
						},
					},
					{
						ID:            "q_machine_maintenance",
						DisplayNumber: "3.3",
						Text:          "Is maintenance performed with the machine de-energized (lockout/tagout)?",
						Measures: []models.Measure{
							{ID: "m_lockout_procedure", Text: "Write and display a lockout/tagout procedure per machine"},
							{ID: "m_lockout_padlocks", Text: "Provide personal padlocks for maintenance staff"},
						},
					},
				},
			},
			// Chemical products: gate plus dependent questions in a gated category.
			{
				ID:            "cat_chemicals",
				Label:         "Chemical products",
				DisplayNumber: "4",
				Questions: []models.Question{
					{
						ID:            "q_uses_chemicals",
						DisplayNumber: "4.1",
						Text:          "Do you use or store chemical products (cleaning agents, solvents, paints...)?",
						Kind:          models.QuestionGate,
					},
				},
			},
			{
				ID:                   "cat_chemical_handling",
				Label:                "Chemical handling and storage",
				DisplayNumber:        "5",
				ParentGateQuestionID: "q_uses_chemicals",
				Questions: []models.Question{
					{
						ID:            "q_chemical_inventory",
						DisplayNumber: "5.1",
						Text:          "Do you keep an up-to-date inventory with safety data sheets for every product?",
						Measures: []models.Measure{
							{ID: "m_sds_register", Text: "Maintain a safety data sheet register accessible to staff"},
							{ID: "m_product_review", Text: "Review the product list yearly and eliminate unused products"},
						},
					},
					{
						ID:            "q_chemical_storage",
						DisplayNumber: "5.2",
						Text:          "Are incompatible products stored separately, with retention in case of spills?",
						Measures: []models.Measure{
							{ID: "m_storage_segregation", Text: "Segregate storage by compatibility class"},
							{ID: "m_storage_retention", Text: "Install retention trays under liquid containers"},
							{ID: "m_storage_ventilation", Text: "Ventilate the storage area"},
						},
					},
				},
			},
			// Psychosocial load: applies to everyone, intro before the questions.
			{
				ID:            "cat_psychosocial",
				Label:         "Work organization and psychosocial load",
				DisplayNumber: "6",
				DefaultDescription: "Risks linked to how work is organized: workload, schedules, " +
					"isolation and internal tensions.",
				Questions: []models.Question{
					{
						ID:            "q_workload",
						DisplayNumber: "6.1",
						Text:          "Is workload monitored so that peaks remain occasional and recoverable?",
						Measures: []models.Measure{
							{ID: "m_workload_review", Text: "Review workload in periodic one-on-ones"},
							{ID: "m_workload_backup", Text: "Organize backups for key positions to absorb peaks"},
						},
					},
					{
						ID:            "q_lone_work",
						DisplayNumber: "6.2",
						Text:          "Are employees working alone or off-site covered by a check-in procedure?",
						Measures: []models.Measure{
							{ID: "m_lone_checkins", Text: "Set up scheduled check-ins for lone workers"},
							{ID: "m_lone_alarm", Text: "Equip lone workers with an alert device"},
						},
					},
				},
			},
		},
	}
}
