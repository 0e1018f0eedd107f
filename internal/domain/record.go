package domain

// GeneratorID identifies one competing response generator within a run.
// It is typically derived from the logical name of the generator's input
// source, such as a filename stem, and must be unique across the run.
type GeneratorID string

// ResponseRecord is a single response produced by one generator for one
// evaluation scenario. Records are immutable once loaded.
type ResponseRecord struct {
	// ScenarioKey identifies the evaluation scenario this response answers.
	ScenarioKey string `json:"input"`

	// Text contains the generator's response for the scenario.
	Text string `json:"response"`
}

// AlignedScenario groups the responses of every generator that answered a
// given scenario. The Aligner only produces scenarios with responses from
// at least two generators; anything less cannot be compared.
type AlignedScenario struct {
	// ScenarioKey identifies the scenario shared by all responses.
	ScenarioKey string `json:"scenario_key"`

	// Responses maps each participating generator to its response text.
	Responses map[GeneratorID]string `json:"responses"`

	// Reference holds the optional ground-truth text for the scenario.
	// An empty string means no reference was supplied.
	Reference string `json:"reference,omitempty"`
}

// HasReference reports whether a ground-truth text is attached.
func (s AlignedScenario) HasReference() bool { return s.Reference != "" }

// Generators returns the IDs of the generators that answered this scenario.
// The order of the returned slice is unspecified.
func (s AlignedScenario) Generators() []GeneratorID {
	ids := make([]GeneratorID, 0, len(s.Responses))
	for id := range s.Responses {
		ids = append(ids, id)
	}
	return ids
}
