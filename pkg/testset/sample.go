package testset

// Sample is the final output unit of testset generation: a synthesized user
// question, the gold reference answer, and the context passages the answer
// is grounded in. Samples are independent of each other.
type Sample struct {
	UserInput         string   `json:"user_input"`
	Reference         string   `json:"reference"`
	ReferenceContexts []string `json:"reference_contexts"`
}
