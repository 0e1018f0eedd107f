package judge

import (
	"fmt"

	"github.com/ahrav/go-arena/internal/domain"
)

// System prompts for the two judging modes. The reference-aware prompt asks
// the judge to compare both responses against a known-good answer; the
// reference-free prompt asks for a direct quality comparison. Both instruct
// the judge to ignore position and length, and to emit a final verdict tag
// so that a non-JSON response can still be parsed.
const (
	systemPromptWithReference = "Please act as an impartial judge and evaluate the quality of the " +
		"responses produced by two competing generators for a given scenario. Your evaluation should " +
		"consider whether each response is appropriate, correct, and logically follows the scenario " +
		"context. You will be given the scenario, a reference (expected) response, generator A's " +
		"response, and generator B's response. Your job is to evaluate which response is better " +
		"aligned with the reference and the scenario.\n\n" +
		"Begin your evaluation by comparing both responses with the reference. Avoid any position " +
		"biases and ensure that the order in which the responses were presented does not influence " +
		"your decision. Do not allow the length of the responses to influence your evaluation. Do " +
		"not favor certain names of the generators. Be as objective as possible. After providing " +
		"your explanation, output your final verdict by strictly following this format: \"[[A]]\" " +
		"if generator A is better, \"[[B]]\" if generator B is better, and \"[[C]]\" for a tie."

	systemPromptNoReference = "Please act as an impartial judge and evaluate the quality of the " +
		"responses produced by two competing generators for a given scenario. Your evaluation should " +
		"consider appropriateness, correctness, logical flow, and relevance to the scenario context. " +
		"You will be given the scenario, generator A's response, and generator B's response. Your " +
		"job is to evaluate which response is more plausible and useful for the given scenario.\n\n" +
		"Avoid any position biases and ensure that the order in which the responses were presented " +
		"does not influence your decision. Do not allow the length of the responses to influence " +
		"your evaluation. Do not favor certain names of the generators. Be as objective as " +
		"possible. After providing your explanation, output your final verdict by strictly " +
		"following this format: \"[[A]]\" if generator A is better, \"[[B]]\" if generator B is " +
		"better, and \"[[C]]\" for a tie."

	// jsonFormatInstruction is appended to the user prompt so providers with
	// JSON mode return a machine-readable decision alongside the verdict tag.
	jsonFormatInstruction = "\n\nIMPORTANT: You must respond with valid JSON in exactly this format:\n" +
		`{"winner": "A" | "B" | "Tie", "explanation": "<brief explanation of why this decision was made>"}`
)

// systemPrompt selects the judging mode for one comparison.
func systemPrompt(c domain.Comparison) string {
	if c.HasReference() {
		return systemPromptWithReference
	}
	return systemPromptNoReference
}

// userPrompt lays out the scenario and both responses in clearly delimited
// segments so the judge cannot confuse the boundaries of either response.
func userPrompt(c domain.Comparison) string {
	if c.HasReference() {
		return fmt.Sprintf(
			"[Scenario]\n%s\n\n"+
				"[The Start of the Reference Response]\n%s\n[The End of the Reference Response]\n\n"+
				"[The Start of Generator A's Response]\n%s\n[The End of Generator A's Response]\n\n"+
				"[The Start of Generator B's Response]\n%s\n[The End of Generator B's Response]",
			c.ScenarioKey, c.Reference, c.TextA, c.TextB)
	}
	return fmt.Sprintf(
		"[Scenario]\n%s\n\n"+
			"[The Start of Generator A's Response]\n%s\n[The End of Generator A's Response]\n\n"+
			"[The Start of Generator B's Response]\n%s\n[The End of Generator B's Response]",
		c.ScenarioKey, c.TextA, c.TextB)
}
